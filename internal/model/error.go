package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ErrorKind classifies a domain error for transport mapping.
type ErrorKind int

const (
	// KindValidation marks malformed or missing input, rejected before storage access.
	KindValidation ErrorKind = iota
	// KindNotFound marks a referenced entity that does not exist.
	KindNotFound
	// KindConflict marks a uniqueness or referential conflict.
	KindConflict
	// KindInvariant marks a server-side consistency defect. Never corrected silently.
	KindInvariant
)

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeInvalidFormat      = "INVALID_FORMAT"
	ErrCodeMissingField       = "MISSING_FIELD"
	ErrCodeInvalidTableNumber = "INVALID_TABLE_NUMBER"
	ErrCodeInvalidQuantity    = "INVALID_QUANTITY"
	ErrCodeInvalidPrice       = "INVALID_PRICE"
	ErrCodeCategoryNotFound   = "CATEGORY_NOT_FOUND"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeTabNotFound        = "TAB_NOT_FOUND"
	ErrCodeLineItemNotFound   = "LINE_ITEM_NOT_FOUND"
	ErrCodeTableOccupied      = "TABLE_OCCUPIED"
	ErrCodeTabClosed          = "TAB_CLOSED"
	ErrCodeCategoryExists     = "CATEGORY_EXISTS"
	ErrCodeCategoryInUse      = "CATEGORY_IN_USE"
	ErrCodeProductInUse       = "PRODUCT_IN_USE"
	ErrCodeAggregateCorrupted = "AGGREGATE_CORRUPTED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// DomainError is a typed business error carried from the ledger and catalog
// up to the HTTP layer, where Kind decides the status code.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error.
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidTableNumber = NewDomainError(KindValidation, ErrCodeInvalidTableNumber, "Table number must be a positive integer")
	ErrInvalidQuantity    = NewDomainError(KindValidation, ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInvalidPrice       = NewDomainError(KindValidation, ErrCodeInvalidPrice, "Price must be greater than zero")
	ErrMissingName        = NewDomainError(KindValidation, ErrCodeMissingField, "Name is required")
	ErrMissingPayment     = NewDomainError(KindValidation, ErrCodeMissingField, "Payment method is required")

	ErrCategoryNotFound = NewDomainError(KindNotFound, ErrCodeCategoryNotFound, "Category not found")
	ErrProductNotFound  = NewDomainError(KindNotFound, ErrCodeProductNotFound, "Product not found")
	ErrTabNotFound      = NewDomainError(KindNotFound, ErrCodeTabNotFound, "Tab not found")
	ErrLineItemNotFound = NewDomainError(KindNotFound, ErrCodeLineItemNotFound, "Line item not found for this tab")

	ErrTableOccupied  = NewDomainError(KindConflict, ErrCodeTableOccupied, "An open tab already exists for this table")
	ErrTabClosed      = NewDomainError(KindConflict, ErrCodeTabClosed, "Tab is already closed")
	ErrCategoryExists = NewDomainError(KindConflict, ErrCodeCategoryExists, "A category with this name already exists")
	ErrCategoryInUse  = NewDomainError(KindConflict, ErrCodeCategoryInUse, "Category is referenced by existing products")
	ErrProductInUse   = NewDomainError(KindConflict, ErrCodeProductInUse, "Product is referenced by existing line items")

	ErrAggregateCorrupted = NewDomainError(KindInvariant, ErrCodeAggregateCorrupted, "Tab aggregate would go negative")
)
