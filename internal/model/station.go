package model

// Station is a stopping point in a city where passengers board or
// leave trains.  Bookings reference an origin and a destination
// station, and tracks connect stations pairwise.
//
// Fields:
//  ID          – primary key identifier.
//  CityID      – city the station belongs to.
//  NameEnglish – station name in English.
//  NameArabic  – station name in Arabic.
type Station struct {
    ID          uint64 // stations.id
    CityID      uint64 // stations.city_id
    NameEnglish string // stations.name_english
    NameArabic  string // stations.name_arabic
}

// Track is a directed rail segment between two stations.  Every trip
// runs over exactly one track, and a booking inherits the track of
// its trip.
//
// Fields:
//  ID            – primary key identifier.
//  OriginID      – station the track starts from.
//  DestinationID – station the track ends at.
type Track struct {
    ID            uint64 // tracks.id
    OriginID      uint64 // tracks.origin_station_id
    DestinationID uint64 // tracks.destination_station_id
}
