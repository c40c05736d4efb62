package service

import (
	"digital-storefront/internal/common"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// storeErr maps a repository error to a service error. notFound is the
// message used when the row does not exist.
func storeErr(op string, err error, notFound string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.NotFound("%s", notFound)
	}
	var kinded *common.Error
	if errors.As(err, &kinded) {
		return err
	}
	return common.StoreUnavailable(op, err)
}

type field struct {
	name  string
	value string
}

func required(fields ...field) error {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return common.Validation("missing required field(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

func utcNow() time.Time {
	return time.Now().UTC()
}
