package device

import "net/http"

// Op names a logical device operation.
type Op string

const (
	OpSystemStatus      Op = "system-status"
	OpGetSensor         Op = "get-sensor"
	OpGetMQTT           Op = "get-mqtt"
	OpUpdateMQTT        Op = "update-mqtt"
	OpGetGPIO           Op = "get-gpio"
	OpTriggerGPIO       Op = "trigger-gpio"
	OpUpdateGPIO        Op = "update-gpio"
	OpPublishMQTT       Op = "publish-mqtt"
	OpRestart           Op = "restart"
	OpFactoryReset      Op = "factory-reset"
	OpGetNetwork        Op = "get-network"
	OpUpdateNetwork     Op = "update-network"
	OpUpdatePassword    Op = "update-password"
	OpGetSensors        Op = "get-sensors"
	OpSaveSensors       Op = "save-sensors"
	OpPublishSensor     Op = "publish-sensor"
	OpToggleSensor      Op = "toggle-sensor"
	OpPublishAllSensors Op = "publish-all-sensors"
)

// Endpoint is an HTTP method and versionless path on the device.
type Endpoint struct {
	Method string
	Path   string
}

// Catalog maps every operation to exactly one endpoint. Paths are fixed by
// the device firmware.
var Catalog = map[Op]Endpoint{
	OpSystemStatus:      {http.MethodGet, "/api/system-status"},
	OpGetSensor:         {http.MethodGet, "/api/get-sensor"},
	OpGetMQTT:           {http.MethodGet, "/api/get-mqtt"},
	OpUpdateMQTT:        {http.MethodPost, "/api/update-mqtt"},
	OpGetGPIO:           {http.MethodGet, "/api/get-gpio"},
	OpTriggerGPIO:       {http.MethodPost, "/api/trigger-gpio"},
	OpUpdateGPIO:        {http.MethodPost, "/api/update-gpio"},
	OpPublishMQTT:       {http.MethodPost, "/api/publish-mqtt"},
	OpRestart:           {http.MethodPost, "/api/restart"},
	OpFactoryReset:      {http.MethodPost, "/api/factory-reset"},
	OpGetNetwork:        {http.MethodGet, "/api/get-network"},
	OpUpdateNetwork:     {http.MethodPost, "/api/update-network"},
	OpUpdatePassword:    {http.MethodPost, "/api/update-password"},
	OpGetSensors:        {http.MethodGet, "/api/get-sensors"},
	OpSaveSensors:       {http.MethodPost, "/api/save-sensors"},
	OpPublishSensor:     {http.MethodPost, "/api/publish-sensor"},
	OpToggleSensor:      {http.MethodPost, "/api/toggle-sensor"},
	OpPublishAllSensors: {http.MethodPost, "/api/publish-all-sensors"},
}

// Lookup resolves an operation to its endpoint.
func Lookup(op Op) (Endpoint, bool) {
	ep, ok := Catalog[op]
	return ep, ok
}
