package service

import (
	"encoding/json"
	"fmt"

	"github.com/dukerupert/tally/internal/domain"
	"github.com/google/uuid"
)

// Recurring generation errors
var (
	ErrTemplateWithoutLines = domain.Errorf(domain.EINVALID, "", "Recurring template has no line items")
	ErrCustomerMismatch     = domain.Errorf(domain.EINVALID, "", "Customer does not belong to the template's tenant")
	ErrCompanyMismatch      = domain.Errorf(domain.EINVALID, "", "Company does not belong to the template's tenant")
)

// TemplateFailure records one template that could not be processed during a
// scan. The scan carries on with the next template.
type TemplateFailure struct {
	TemplateID   uuid.UUID
	TemplateName string
	Err          error
}

func (f TemplateFailure) Error() string {
	return fmt.Sprintf("template %s (%s): %v", f.TemplateID, f.TemplateName, f.Err)
}

func (f TemplateFailure) Unwrap() error {
	return f.Err
}

// MarshalJSON renders the failure with its error message.
func (f TemplateFailure) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TemplateID   uuid.UUID `json:"template_id"`
		TemplateName string    `json:"template_name"`
		Code         string    `json:"code"`
		Error        string    `json:"error"`
	}{
		TemplateID:   f.TemplateID,
		TemplateName: f.TemplateName,
		Code:         domain.ErrorCode(f.Err),
		Error:        f.Err.Error(),
	})
}
