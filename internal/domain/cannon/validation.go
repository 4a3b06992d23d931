package cannon

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rpggio/cannonplot/internal/trajectory"
)

var colorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateCreateInput validates fields required to add a cannon.
func ValidateCreateInput(req CreateRequest) error {
	if strings.TrimSpace(req.Author) == "" {
		return fmt.Errorf("%w: author is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if req.Color != "" && !ValidColor(req.Color) {
		return fmt.Errorf("%w: color must be #rgb or #rrggbb", ErrInvalidInput)
	}
	for _, s := range req.TrajectoryData {
		if err := validateSample(s); err != nil {
			return err
		}
	}
	return nil
}

// ValidColor reports whether c is a #rgb or #rrggbb hex color.
func ValidColor(c string) bool {
	return colorPattern.MatchString(c)
}

func validateSample(s trajectory.RangeSample) error {
	if s.Range < 0 {
		return fmt.Errorf("%w: range %d is negative", ErrInvalidInput, s.Range)
	}
	if s.Low < 0 || s.Medium < 0 || s.High < 0 {
		return fmt.Errorf("%w: counts at range %d must not be negative", ErrInvalidInput, s.Range)
	}
	return nil
}
