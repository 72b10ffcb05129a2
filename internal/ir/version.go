package ir

// EngineVersion is the boutinf release, reported by `boutinf --version`.
const EngineVersion = "0.1.0"
