package protocol

import (
	"bytes"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		command string
		key     string
		length  string
		value   string
		ttl     string
	}{
		{
			name:    "GET with key",
			input:   "GET KEY1",
			command: "GET",
			key:     "KEY1",
		},
		{
			name:    "SET with four arguments",
			input:   "SET KEY1 6 VALUE1",
			command: "SET",
			key:     "KEY1",
			length:  "6",
			value:   "VALUE1",
		},
		{
			name:    "SET with ttl",
			input:   "SET KEY1 6 VALUE1 1",
			command: "SET",
			key:     "KEY1",
			length:  "6",
			value:   "VALUE1",
			ttl:     "1",
		},
		{
			name:    "SET value containing a space",
			input:   "SET KEY2 10 VALUE2 EXT 100",
			command: "SET",
			key:     "KEY2",
			length:  "10",
			value:   "VALUE2 EXT",
			ttl:     "100",
		},
		{
			name:    "SET value containing a newline",
			input:   "SET KEY3 5 ab\ncd 7",
			command: "SET",
			key:     "KEY3",
			length:  "5",
			value:   "ab\ncd",
			ttl:     "7",
		},
		{
			name:    "multiple spaces",
			input:   "SET   KEY1  6 VALUE1   200",
			command: "SET",
			key:     "KEY1",
			length:  "6",
			value:   "VALUE1",
			ttl:     "200",
		},
		{
			name:    "leading spaces",
			input:   "  GET KEY1",
			command: "GET",
			key:     "KEY1",
		},
		{
			name:    "zero length consumes no value",
			input:   "SET KEY1 0 VALUE1",
			command: "SET",
			key:     "KEY1",
			length:  "0",
			ttl:     "VALUE1",
		},
		{
			name:    "negative length consumes no value",
			input:   "SET KEY1 -3 30",
			command: "SET",
			key:     "KEY1",
			length:  "-3",
			ttl:     "30",
		},
		{
			name:    "length larger than remaining input",
			input:   "SET KEY1 50 short 10",
			command: "SET",
			key:     "KEY1",
			length:  "50",
		},
		{
			name:    "non numeric length",
			input:   "SET KEY1 abc 10",
			command: "SET",
			key:     "KEY1",
			length:  "abc",
			ttl:     "10",
		},
		{name: "empty", input: ""},
		{name: "only spaces", input: "    "},
		{name: "GET without key", input: "GET"},
		{name: "GET with trailing space", input: "GET "},
		{name: "SET without key", input: "SET"},
		{name: "SET with trailing space", input: "SET "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Parse([]byte(tt.input))
			check := func(field string, got []byte, want string) {
				t.Helper()
				if string(got) != want {
					t.Errorf("%s = %q, want %q", field, got, want)
				}
			}
			check("command", p.Command, tt.command)
			check("key", p.Key, tt.key)
			check("length", p.Length, tt.length)
			check("value", p.Value, tt.value)
			check("ttl", p.TTL, tt.ttl)
		})
	}
}

func TestParse_SpacingDoesNotMatter(t *testing.T) {
	single := Parse([]byte("SET KEY1 6 VALUE1 10"))
	double := Parse([]byte("SET  KEY1 6 VALUE1 10"))

	if !bytes.Equal(single.Command, double.Command) ||
		!bytes.Equal(single.Key, double.Key) ||
		!bytes.Equal(single.Length, double.Length) ||
		!bytes.Equal(single.Value, double.Value) ||
		!bytes.Equal(single.TTL, double.TTL) {
		t.Errorf("Parse differs: %+v vs %+v", single, double)
	}
}

func TestParse_Aliases(t *testing.T) {
	in := []byte("SET KEY1 6 VALUE1 10")
	p := Parse(in)
	in[11] = 'X'
	if string(p.Value) != "XALUE1" {
		t.Errorf("Value = %q, want it to alias the input", p.Value)
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Request
	}{
		{"get", "GET KEY1", Request{Kind: KindGet, Key: "KEY1"}},
		{"get lowercase", "get key1", Request{Kind: KindGet, Key: "key1"}},
		{"get with CR", "GET KEY1\r", Request{Kind: KindGet, Key: "KEY1"}},
		{"delete", "DELETE KEY1", Request{Kind: KindDelete, Key: "KEY1"}},
		{"del alias", "DEL KEY1", Request{Kind: KindDelete, Key: "KEY1"}},
		{"stat", "STAT", Request{Kind: KindStat}},
		{"stat with CR", "STAT\r", Request{Kind: KindStat}},
		{"stat with argument", "STAT all", Request{Kind: KindStat}},
		{"set", "SET K 5 hello 5", Request{Kind: KindSet, Key: "K", Value: []byte("hello"), TTL: 5 * time.Second}},
		{"set ttl with CR", "SET K 5 hello 5\r", Request{Kind: KindSet, Key: "K", Value: []byte("hello"), TTL: 5 * time.Second}},
		{"set without ttl", "SET K 5 hello", Request{Kind: KindSet, Key: "K", Value: []byte("hello"), TTL: DefaultTTL}},
		{"set bad ttl", "SET K 5 hello soon", Request{Kind: KindSet, Key: "K", Value: []byte("hello"), TTL: DefaultTTL}},
		{"set zero ttl", "SET K 5 hello 0", Request{Kind: KindSet, Key: "K", Value: []byte("hello"), TTL: 0}},
		{"get without key", "GET", Request{}},
		{"set without key", "SET ", Request{}},
		{"delete without key", "DELETE", Request{}},
		{"unknown verb", "PING x", Request{}},
		{"empty", "", Request{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCommand([]byte(tt.input))
			if got.Kind != tt.want.Kind || got.Key != tt.want.Key ||
				!bytes.Equal(got.Value, tt.want.Value) || got.TTL != tt.want.TTL {
				t.Errorf("ParseCommand(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestKind_String(t *testing.T) {
	kinds := map[Kind]string{
		KindNone:   "none",
		KindGet:    "get",
		KindSet:    "set",
		KindDelete: "delete",
		KindStat:   "stat",
	}
	for k, want := range kinds {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestAppendStats(t *testing.T) {
	got := string(AppendStats(nil, 1, 2, 0))
	want := "GET: 000001; SET: 000002; DELETE: 000000;\r\n"
	if got != want {
		t.Errorf("AppendStats = %q, want %q", got, want)
	}

	got = string(AppendStats(nil, 1234567, 0, 0))
	want = "GET: 1234567; SET: 000000; DELETE: 000000;\r\n"
	if got != want {
		t.Errorf("AppendStats = %q, want %q", got, want)
	}
}

func TestIsError(t *testing.T) {
	if !IsError(RespMalformed) || !IsError(RespInternal) {
		t.Error("error responses should be detected")
	}
	if IsError(RespOK) || IsError(RespNil) || IsError(nil) {
		t.Error("non-error responses should not be detected")
	}
}
