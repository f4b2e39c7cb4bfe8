package response

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Status:  "error",
		Error:   "invalid_request",
		Details: "Invalid request format",
	}

	ErrAuthenticationFailed = ErrorResponse{
		Status: "error",
		Error:  "authentication_failed",
	}

	ErrSessionExpired = ErrorResponse{
		Status:  "error",
		Error:   "session_expired",
		Details: "Session is expired",
	}

	ErrUnknownResource = ErrorResponse{
		Status:  "error",
		Error:   "unknown_resource",
		Details: "No such listing resource",
	}

	ErrUnknownVariant = ErrorResponse{
		Status:  "error",
		Error:   "unknown_variant",
		Details: "No such product variant",
	}

	ErrWizardLocked = ErrorResponse{
		Status:  "error",
		Error:   "wizard_locked",
		Details: "Save the product before editing variant images",
	}
)
