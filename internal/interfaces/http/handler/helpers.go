package handler

import (
	"fmt"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/google/uuid"
)

// dateLayouts are the accepted request date formats, tried in order
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// parseDateTime parses a request date in RFC 3339 or date-only form.
// An empty string yields the zero time without error.
func parseDateTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %s", value)
}

// parseOptionalDate parses a date pointer, nil in nil out
func parseOptionalDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := parseDateTime(*value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseOptionalUUID parses a UUID pointer, nil in nil out
func parseOptionalUUID(value *string) (*uuid.UUID, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// uuidPtrToString renders a UUID pointer for a response, nil in nil out
func uuidPtrToString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

// toFilter converts list request parameters to a domain filter
func toFilter(req dto.ListRequest) shared.Filter {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}
	return shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	}
}
