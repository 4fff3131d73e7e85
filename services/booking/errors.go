package booking

import (
	"strings"

	"homeserve/utils"
)

// requireFields returns a ValidationError naming every blank field.
func requireFields(fields ...[2]string) error {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			missing = append(missing, f[0])
		}
	}
	if len(missing) > 0 {
		return utils.ValidationError("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}
