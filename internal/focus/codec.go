package focus

import (
	"encoding/json"
	"reflect"
	"strings"
)

// Records keep JSON members they do not know about, so collections written
// by a newer client survive a load/save cycle here.

var (
	taskFields    = jsonFields(reflect.TypeOf(FocusTask{}))
	sessionFields = jsonFields(reflect.TypeOf(FocusSession{}))
	breakFields   = jsonFields(reflect.TypeOf(BreakSession{}))
)

func jsonFields(t reflect.Type) map[string]bool {
	fields := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" {
			name = f.Name
		}
		fields[name] = true
	}
	return fields
}

func marshalWithExtra(v any, extra map[string]json.RawMessage) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return b, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		if _, ok := m[k]; !ok {
			m[k] = raw
		}
	}
	return json.Marshal(m)
}

func unmarshalWithExtra(b []byte, v any, known map[string]bool) (map[string]json.RawMessage, error) {
	if err := json.Unmarshal(b, v); err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	var extra map[string]json.RawMessage
	for k, raw := range m {
		if known[k] {
			continue
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[k] = raw
	}
	return extra, nil
}

func (t FocusTask) MarshalJSON() ([]byte, error) {
	type plain FocusTask
	return marshalWithExtra(plain(t), t.extra)
}

func (t *FocusTask) UnmarshalJSON(b []byte) error {
	type plain FocusTask
	var p plain
	extra, err := unmarshalWithExtra(b, &p, taskFields)
	if err != nil {
		return err
	}
	*t = FocusTask(p)
	t.extra = extra
	return nil
}

func (s FocusSession) MarshalJSON() ([]byte, error) {
	type plain FocusSession
	return marshalWithExtra(plain(s), s.extra)
}

func (s *FocusSession) UnmarshalJSON(b []byte) error {
	type plain FocusSession
	var p plain
	extra, err := unmarshalWithExtra(b, &p, sessionFields)
	if err != nil {
		return err
	}
	*s = FocusSession(p)
	s.extra = extra
	return nil
}

func (br BreakSession) MarshalJSON() ([]byte, error) {
	type plain BreakSession
	return marshalWithExtra(plain(br), br.extra)
}

func (br *BreakSession) UnmarshalJSON(b []byte) error {
	type plain BreakSession
	var p plain
	extra, err := unmarshalWithExtra(b, &p, breakFields)
	if err != nil {
		return err
	}
	*br = BreakSession(p)
	br.extra = extra
	return nil
}
