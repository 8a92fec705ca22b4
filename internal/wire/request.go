package wire

import (
	"bytes"
	"strconv"
	"time"
)

// Field is one key=value pair of a request line. Values are constrained to
// alphanumerics, digits, dots, and minus signs; no escaping exists in the
// protocol.
type Field struct {
	Key   string
	Value string
}

// Str builds a string field.
func Str(key, value string) Field { return Field{Key: key, Value: value} }

// Int builds an integer field.
func Int(key string, value int64) Field {
	return Field{Key: key, Value: strconv.FormatInt(value, 10)}
}

// Date builds a YYYYMMDD date field.
func Date(key string, t time.Time) Field {
	return Field{Key: key, Value: t.Format("20060102")}
}

// Bool builds a True/False field. The Terminal accepts either case; the
// capitalized form matches the historical wire captures.
func Bool(key string, v bool) Field {
	if v {
		return Field{Key: key, Value: "True"}
	}
	return Field{Key: key, Value: "False"}
}

// EncodeRequest renders a newline-terminated request line:
//
//	MSG_CODE=<code>&<key>=<value>&...\n
//
// Field order is preserved as given.
func EncodeRequest(code MessageType, fields ...Field) []byte {
	var buf bytes.Buffer
	buf.WriteString("MSG_CODE=")
	buf.WriteString(strconv.Itoa(int(code)))
	for _, f := range fields {
		buf.WriteByte('&')
		buf.WriteString(f.Key)
		buf.WriteByte('=')
		buf.WriteString(f.Value)
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}
