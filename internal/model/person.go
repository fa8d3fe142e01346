package model

import "time"

// Account roles.  A person is a passenger, a staff member, or both;
// staff membership wins when deriving the role for authorization.
const (
    RolePassenger = "PASSENGER"
    RoleStaff     = "STAFF"
)

// Person is the identity record shared by passengers and staff.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – full display name.
//  Email        – unique login email.
//  PasswordHash – bcrypt hash of the password.
//  Phone        – contact phone number.
//  CreatedAt    – creation timestamp.
type Person struct {
    ID           uint64    // persons.id
    Name         string    // persons.name
    Email        string    // persons.email
    PasswordHash string    // persons.password_hash
    Phone        string    // persons.phone
    CreatedAt    time.Time // persons.created_at
}

// Passenger extends a person with travel-specific attributes.  The
// passenger ID equals the person ID.
//
// Fields:
//  PersonID          – person this passenger record belongs to.
//  IdentificationDoc – government ID document number.
//  LoyaltyKilometers – accumulated loyalty balance.
type Passenger struct {
    PersonID          uint64 // passengers.person_id
    IdentificationDoc string // passengers.identification_doc
    LoyaltyKilometers uint32 // passengers.loyalty_kilometers
}

// Staff extends a person with an employment record.  The staff ID
// equals the person ID.
//
// Fields:
//  PersonID – person this staff record belongs to.
//  HiredAt  – employment start date.
type Staff struct {
    PersonID uint64    // staff.person_id
    HiredAt  time.Time // staff.hired_at
}

// Dependent is a traveler booked under a passenger's account.
// Dependents cannot log in; their bookings belong to the sponsoring
// passenger.
//
// Fields:
//  ID          – primary key identifier.
//  PassengerID – sponsoring passenger.
//  Name        – dependent's full name.
//  Relation    – relation to the passenger (e.g. "child", "spouse").
type Dependent struct {
    ID          uint64 // dependents.id
    PassengerID uint64 // dependents.passenger_id
    Name        string // dependents.name
    Relation    string // dependents.relation
}

// Account is a person joined with their derived role, produced at
// login and carried in the JWT claims.
type Account struct {
    Person
    Role string
}

// PassengerProfile is a passenger joined with their person record and
// dependents, shaped for directory and profile views.
type PassengerProfile struct {
    Person
    IdentificationDoc string
    LoyaltyKilometers uint32
    Dependents        []Dependent
}
