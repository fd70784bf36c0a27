package model

import "time"

// Appointment statuses. An appointment starts PENDING; an admin assigning a
// beekeeper moves it to ACCEPTED; the assigned beekeeper (or an admin) marks
// it COMPLETED; the owning customer may cancel while still PENDING.
// COMPLETED and CANCELLED are terminal.
const (
	AppointmentPending   = "PENDING"
	AppointmentAccepted  = "ACCEPTED"
	AppointmentCompleted = "COMPLETED"
	AppointmentCancelled = "CANCELLED"
)

// appointmentEdges is the allowed transition graph for appointments.
var appointmentEdges = map[string][]string{
	AppointmentPending:   {AppointmentAccepted, AppointmentCancelled},
	AppointmentAccepted:  {AppointmentCompleted},
	AppointmentCompleted: {},
	AppointmentCancelled: {},
}

// ValidAppointmentStatus reports whether s is a known appointment status.
func ValidAppointmentStatus(s string) bool {
	_, ok := appointmentEdges[s]
	return ok
}

// CanTransitionAppointment reports whether an appointment may move from one
// status to another. Unknown statuses never transition.
func CanTransitionAppointment(from, to string) bool {
	for _, next := range appointmentEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Appointment is a pest-removal job booked by a customer. The contact and
// location fields are captured at booking time; BeekeeperID is nil until an
// admin assigns the job. ServiceChargeCents is a flat fee snapshot.
type Appointment struct {
	ID                 uint64    // appointments.id
	CustomerID         uint64    // appointments.customer_id
	BeekeeperID        *uint64   // appointments.beekeeper_id (nullable until assigned)
	FullName           string    // appointments.full_name
	Email              string    // appointments.email
	Phone              string    // appointments.phone
	Date               string    // appointments.date (YYYY-MM-DD)
	Time               string    // appointments.time (HH:MM)
	Hivespot           string    // appointments.hivespot
	Address            string    // appointments.address
	Latitude           *float64  // appointments.latitude (nullable)
	Longitude          *float64  // appointments.longitude (nullable)
	Severity           string    // appointments.severity
	PhotoPath          string    // appointments.photo_path ("" when no photo)
	ServiceChargeCents int64     // appointments.service_charge_cents
	Status             string    // appointments.status
	Rating             *int      // appointments.rating (1-5, nullable)
	Review             *string   // appointments.review (nullable)
	CreatedAt          time.Time // appointments.created_at
	UpdatedAt          time.Time // appointments.updated_at
}

// StatusEntry is one row of an entity's append-only status history. The
// latest entry always matches the entity's current status.
type StatusEntry struct {
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}
