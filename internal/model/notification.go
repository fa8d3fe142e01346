package model

import "time"

// Notification is a scheduled outbound message, currently only
// departure reminders sent three hours before a booked trip leaves.
// Rows are deleted once the reminder has been published.
//
// Fields:
//  ID        – primary key identifier.
//  BookingID – booking the reminder is about.
//  SendAt    – when the reminder becomes due.
//  CreatedAt – creation timestamp.
type Notification struct {
    ID        uint64    // notification_queue.id
    BookingID uint64    // notification_queue.booking_id
    SendAt    time.Time // notification_queue.send_at
    CreatedAt time.Time // notification_queue.created_at
}
