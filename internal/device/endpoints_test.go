package device

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogComplete(t *testing.T) {
	ops := []Op{
		OpSystemStatus, OpGetSensor, OpGetMQTT, OpUpdateMQTT,
		OpGetGPIO, OpTriggerGPIO, OpUpdateGPIO, OpPublishMQTT,
		OpRestart, OpFactoryReset, OpGetNetwork, OpUpdateNetwork,
		OpUpdatePassword, OpGetSensors, OpSaveSensors,
		OpPublishSensor, OpToggleSensor, OpPublishAllSensors,
	}
	assert.Len(t, Catalog, len(ops))
	for _, op := range ops {
		ep, ok := Lookup(op)
		assert.True(t, ok, "missing op %s", op)
		assert.True(t, strings.HasPrefix(ep.Path, "/api/"), "path %q", ep.Path)
		assert.Contains(t, []string{http.MethodGet, http.MethodPost}, ep.Method)
	}
}

func TestCatalogPathsUnique(t *testing.T) {
	seen := map[string]Op{}
	for op, ep := range Catalog {
		key := ep.Method + " " + ep.Path
		prev, dup := seen[key]
		assert.False(t, dup, "%s and %s share %s", op, prev, key)
		seen[key] = op
	}
}

func TestLookupUnknown(t *testing.T) {
	_, ok := Lookup(Op("no-such-op"))
	assert.False(t, ok)
}
