package logger

import "strings"

var levelNames = map[string]string{
	"debug":   "DEBUG",
	"info":    "INFO",
	"warn":    "WARN",
	"warning": "WARN",
	"error":   "ERROR",
}

// statusValues and outcomeValues are the enumerations accepted for the
// "status" and "outcome" keys; unknown outcomes are dropped.
var (
	statusValues = map[string]struct{}{
		"ok": {}, "fail": {}, "skip": {}, "retry": {}, "rate_limited": {}, "not_found": {},
	}
	outcomeValues = map[string]struct{}{
		"ok": {}, "fail": {}, "empty": {}, "dropped": {}, "rate_limited": {},
	}
)

func normalizeLevel(level string) string {
	if level == "" {
		return "INFO"
	}
	if mapped, ok := levelNames[strings.ToLower(level)]; ok {
		return mapped
	}
	return strings.ToUpper(level)
}

func normalizeEnum(value string, allowed map[string]struct{}) (string, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "", false
	}
	_, ok := allowed[value]
	return value, ok
}

var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"chat_type",
	"handler",
	"intent",
	"menu",
	"kind",
	"outcome",
	"duration_ms",
	"messages",
	"kb",
	"count",
	"film_uuid",
	"cinema_uuid",
	"is_fav",
	"cache",
	"payload",
	"lang",
	"username",
	"mode",
	"listen",
	"public_url",
	"db",
	"host",
	"port",
	"exchange",
	"routing_key",
	"err",
	"err_code",
	"cause",
	"attempts",
}
