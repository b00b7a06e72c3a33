package parser

import (
	"regexp"
	"strconv"

	"github.com/plc-visualizer/plc2yaml/internal/models"
)

// addressRegex matches Modbus addresses at the start of a source element:
// "MC5", "MHR70", "MHR70:RD". Trailing text is ignored.
var addressRegex = regexp.MustCompile(`^(MC|MHR)(\d+)(:RD)?`)

// ParseAddress decodes the source element of a record. It reports false for
// elements that are not Modbus coils or holding registers.
func ParseAddress(source string) (models.Address, bool) {
	m := addressRegex.FindStringSubmatch(source)
	if m == nil {
		return models.Address{}, false
	}

	kind, ok := models.KindForPrefix(m[1])
	if !ok {
		return models.Address{}, false
	}

	n, err := strconv.Atoi(m[2])
	if err != nil {
		// digit runs too long for int
		return models.Address{}, false
	}

	return models.Address{
		Kind:   kind,
		Number: n,
		Float:  m[3] != "",
	}, true
}
