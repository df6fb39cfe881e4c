package app

import (
	"fmt"
	"os"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/courtsidehq/courtside/internal/domain/identity"
	"github.com/courtsidehq/courtside/internal/usecase"
)

var overrideValidator = validator.New()

// LoadOverrideTable reads the operator override file and re-keys it by
// normalized name. An empty path means no overrides, which is the
// common case.
func LoadOverrideTable(path string) (identity.OverrideTable, error) {
	if path == "" {
		return identity.OverrideTable{}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return identity.OverrideTable{}, fmt.Errorf("read override table %q: %w", path, err)
	}

	var table identity.OverrideTable
	if err := sonic.Unmarshal(raw, &table); err != nil {
		return identity.OverrideTable{}, fmt.Errorf("decode override table %q: %w", path, err)
	}

	for key, entry := range table.Entries {
		if err := overrideValidator.Struct(entry); err != nil {
			return identity.OverrideTable{}, fmt.Errorf("invalid override entry %q: %w", key, err)
		}
	}
	if err := table.Validate(); err != nil {
		return identity.OverrideTable{}, fmt.Errorf("invalid override table %q: %w", path, err)
	}

	return usecase.NormalizeOverrideTable(table), nil
}
