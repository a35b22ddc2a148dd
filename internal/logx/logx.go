// Package logx tags every log line with the subsystem that produced it
// (cec, discovery, http, mqtt), the way the teacher's handlers prefixed
// their log.Printf calls with "[CEC ...]"/"[MQTT ...]" by hand.
//
// None of the example repos pull in a structured-logging library
// (zerolog, zap, logrus) for this kind of daemon — they all log through
// the standard library — so this stays a thin wrapper rather than
// reaching for a dependency nothing in the pack uses this way.
package logx

import "log"

func Printf(subsystem, format string, args ...interface{}) {
	log.Printf("["+subsystem+"] "+format, args...)
}

func Println(subsystem string, args ...interface{}) {
	args = append([]interface{}{"[" + subsystem + "]"}, args...)
	log.Println(args...)
}
