package model

// City is a populated place served by the railway network.  Stations
// belong to exactly one city and trips are searched by the city of
// their origin and destination stations.
//
// Fields:
//  ID          – primary key identifier.
//  NameEnglish – city name in English.
//  NameArabic  – city name in Arabic.
type City struct {
    ID          uint64 // cities.id
    NameEnglish string // cities.name_english
    NameArabic  string // cities.name_arabic
}
