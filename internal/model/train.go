package model

// Train is a physical train with a fixed seat inventory per fare
// class.  Seat numbers for a class range from 1 up to that class's
// capacity, and the same numbering is shared by every trip the train
// runs.
//
// Fields:
//  ID               – primary key identifier.
//  NameEnglish      – train name in English.
//  NameArabic       – train name in Arabic.
//  CapacityEconomy  – number of Economy seats.
//  CapacityBusiness – number of Business seats.
type Train struct {
    ID               uint64 // trains.id
    NameEnglish      string // trains.name_english
    NameArabic       string // trains.name_arabic
    CapacityEconomy  uint32 // trains.capacity_economy
    CapacityBusiness uint32 // trains.capacity_business
}

// CapacityForClass returns the seat capacity of the given fare class.
// The second return value is false for unknown class names.
func (t Train) CapacityForClass(class string) (uint32, bool) {
    switch class {
    case ClassEconomy:
        return t.CapacityEconomy, true
    case ClassBusiness:
        return t.CapacityBusiness, true
    }
    return 0, false
}

// TrainStop is one scheduled stop of a train, used when listing the
// stations a given train passes through.
//
// Fields:
//  StationID   – station being stopped at.
//  NameEnglish – station name in English.
//  NameArabic  – station name in Arabic.
//  CityID      – city the station belongs to.
type TrainStop struct {
    StationID   uint64
    NameEnglish string
    NameArabic  string
    CityID      uint64
}
