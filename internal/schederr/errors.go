// Package schederr defines the typed failures the scheduling core returns.
// Handlers map these to HTTP statuses; none are retried server-side.
package schederr

// Error is a structured scheduling failure with a stable machine code.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	// ErrAvailabilityConflict: the requested interval is no longer free at
	// commit time. The client must re-query availability and pick again.
	ErrAvailabilityConflict = &Error{
		Code:    "availability_conflict",
		Message: "the requested time is no longer available",
	}

	// ErrOutsideModificationWindow: customer-initiated cancel/reschedule
	// attempted inside the organization's cutoff.
	ErrOutsideModificationWindow = &Error{
		Code:    "outside_modification_window",
		Message: "the appointment can no longer be modified online",
	}

	// ErrInvalidStaffForServices: the staff member cannot perform one or
	// more of the requested services.
	ErrInvalidStaffForServices = &Error{
		Code:    "invalid_staff_for_services",
		Message: "the selected staff member does not offer all requested services",
	}

	// ErrAppointmentNotFound: no appointment matches the identifier.
	ErrAppointmentNotFound = &Error{
		Code:    "appointment_not_found",
		Message: "appointment not found",
	}

	// ErrInvalidConfirmationOrPhone: confirmation code and phone do not
	// identify an appointment. Deliberately indistinguishable from a wrong
	// code so callers cannot enumerate customer phone numbers.
	ErrInvalidConfirmationOrPhone = &Error{
		Code:    "invalid_confirmation_or_phone",
		Message: "no appointment matches that confirmation code and phone number",
	}

	// ErrInvalidStatusTransition: the status machine rejects the move.
	ErrInvalidStatusTransition = &Error{
		Code:    "invalid_status_transition",
		Message: "the appointment cannot move to the requested status",
	}

	// ErrValidation: malformed input (bad interval, unknown date, ...).
	ErrValidation = &Error{
		Code:    "validation",
		Message: "invalid request",
	}
)
