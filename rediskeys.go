package main

import "fmt"

var REDIS_KEYS = struct {
	EVENTS_CHANNEL string
	RUN_CHANNEL    func(string) string
}{
	"pixflood:events",
	func(runId string) string {
		return fmt.Sprint("pixflood:run:", runId)
	},
}
