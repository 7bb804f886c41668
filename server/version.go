package server

// DataVersion is the world data version this converter reads. Worlds saved with any other data
// version must be upgraded by the game before they can be converted.
const DataVersion = 4189

// VersionName is the name of the game version DataVersion belongs to.
const VersionName = "1.21.4"
