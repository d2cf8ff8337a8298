package services

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"shirtcatalog/internal/models"

	"github.com/go-playground/validator/v10"
)

// ShirtForm carries raw client input. Empty fields count as absent.
type ShirtForm struct {
	Brand string
	Size  string
	Price string
}

// shirtInput is the validated form of a complete shirt.
type shirtInput struct {
	Brand string  `validate:"required,max=255"`
	Size  string  `validate:"required,max=64"`
	Price float64 `validate:"gte=0"`
}

func (s *CatalogService) parseCreate(form ShirtForm) (*models.Shirt, error) {
	fields := make(map[string]string)

	input := shirtInput{
		Brand: strings.TrimSpace(form.Brand),
		Size:  strings.TrimSpace(form.Size),
	}
	rawPrice := strings.TrimSpace(form.Price)
	if rawPrice == "" {
		fields["price"] = "is required"
	} else if price, err := parsePrice(rawPrice); err != nil {
		fields["price"] = err.Error()
	} else {
		input.Price = price
	}

	if err := s.validate.Struct(input); err != nil {
		collectFieldErrors(err, fields)
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	return &models.Shirt{Brand: input.Brand, Size: input.Size, Price: input.Price}, nil
}

func (s *CatalogService) parseUpdate(form ShirtForm) (models.ShirtChanges, error) {
	var changes models.ShirtChanges
	fields := make(map[string]string)

	if brand := strings.TrimSpace(form.Brand); brand != "" {
		if err := s.validate.Var(brand, "max=255"); err != nil {
			fields["brand"] = "must be at most 255 characters"
		}
		changes.Brand = &brand
	}
	if size := strings.TrimSpace(form.Size); size != "" {
		if err := s.validate.Var(size, "max=64"); err != nil {
			fields["size"] = "must be at most 64 characters"
		}
		changes.Size = &size
	}
	if rawPrice := strings.TrimSpace(form.Price); rawPrice != "" {
		price, err := parsePrice(rawPrice)
		if err != nil {
			fields["price"] = err.Error()
		} else if err := s.validate.Var(price, "gte=0"); err != nil {
			fields["price"] = "must not be negative"
		}
		changes.Price = &price
	}

	if len(fields) > 0 {
		return models.ShirtChanges{}, &ValidationError{Fields: fields}
	}
	return changes, nil
}

// parsePrice accepts only complete finite decimal numbers.
func parsePrice(raw string) (float64, error) {
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, errors.New("must be a number")
	}
	return price, nil
}

func collectFieldErrors(err error, fields map[string]string) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		fields["input"] = err.Error()
		return
	}
	for _, e := range validationErrors {
		name := strings.ToLower(e.Field())
		if _, seen := fields[name]; seen {
			continue
		}
		switch e.Tag() {
		case "required":
			fields[name] = "is required"
		case "max":
			fields[name] = fmt.Sprintf("must be at most %s characters", e.Param())
		case "gte":
			fields[name] = "must not be negative"
		default:
			fields[name] = fmt.Sprintf("failed on the '%s' tag", e.Tag())
		}
	}
}
