package diff

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/huanfeng/apkinspect/internal/errors"
	"github.com/huanfeng/apkinspect/pkg/models"
)

// LoadAnalysis reads an analysis saved by `apkinspect analyze --format json`
// or `--format yaml`. The format follows the file extension.
func LoadAnalysis(path string) (*models.Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeFileSystem, errors.CodeDiffInput, "failed to read saved analysis").
			WithContext("path", path)
	}

	var a models.Analysis
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &a)
	default:
		err = json.Unmarshal(data, &a)
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeParsing, errors.CodeDiffInput, "saved analysis is not valid").
			WithContext("path", path)
	}
	if a.Metadata == nil {
		return nil, errors.NewParsingError(errors.CodeDiffInput, "saved analysis has no metadata").
			WithContext("path", path)
	}
	return &a, nil
}
