package participation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewTxnRef builds a unique, unguessable reference: TXN + unix millis + 20 hex chars.
func NewTxnRef(now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("TXN%d%s", now.UnixMilli(), random[:20])
}
