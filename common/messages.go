package common

import (
	"fmt"
	"time"

	"github.com/danielbahrami/SE08-SP/state"
)

// Events understood by the reference transition tables.
const INIT_EVENT = "init"
const READY_EVENT = "ready"
const ERR_WIFI_EVENT = "err-wifi"
const ERR_MQTT_EVENT = "err-mqtt"
const ERR_COMMAND_EVENT = "err-command"

const OPEN_EVENT = "open"
const OPEN_COMPLETE_EVENT = "open-complete"
const OPEN_FAILURE_EVENT = "open-failure"
const CLOSE_EVENT = "close"
const CLOSE_COMPLETE_EVENT = "close-complete"
const CLOSE_FAILURE_EVENT = "close-failure"
const RESET_EVENT = "reset"

// DDA event types.
const COMMAND_EVENT_TYPE = "com.smartlock.command"
const HEARTBEAT_EVENT_TYPE = "com.smartlock.heartbeat"

// HeartbeatMessage formats the status line published on the heartbeat topic.
func HeartbeatMessage(s state.State, timestamp time.Time) string {
	return fmt.Sprintf("SmartLock: %s, %d", s, timestamp.UnixMilli())
}
