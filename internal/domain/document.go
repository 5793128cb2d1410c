package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strconv"
)

// Document is the whole shared state. It is the unit of both read and write:
// every change replaces the entire document.
type Document struct {
	Tables        []Table        `json:"tables"`
	Menu          []MenuItem     `json:"menu"`
	History       []HistoryEntry `json:"history"`
	Notifications []Notification `json:"notifications"`
	Users         []User         `json:"users"`
	BankConfig    BankConfig     `json:"bankConfig"`
	Reviews       []Review       `json:"reviews"`
	LastUpdated   int64          `json:"lastUpdated"`

	// DroppedNotifications lists notifications that could not be decoded.
	// They are left out of Notifications and vanish on the next write.
	DroppedNotifications []string `json:"-"`
}

// Clone returns a deep copy. Mutators work on clones so the caller's snapshot
// stays untouched when an operation fails halfway through validation.
func (d Document) Clone() Document {
	out := d
	out.Tables = slices.Clone(d.Tables)
	for i := range out.Tables {
		out.Tables[i].CurrentOrders = slices.Clone(out.Tables[i].CurrentOrders)
	}
	out.Menu = slices.Clone(d.Menu)
	out.History = slices.Clone(d.History)
	for i := range out.History {
		out.History[i].Items = slices.Clone(out.History[i].Items)
	}
	out.Notifications = slices.Clone(d.Notifications)
	out.DroppedNotifications = slices.Clone(d.DroppedNotifications)
	out.Users = slices.Clone(d.Users)
	out.Reviews = slices.Clone(d.Reviews)
	return out
}

func (d *Document) TableIndex(id int) int {
	for i := range d.Tables {
		if d.Tables[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Document) Table(id int) (*Table, error) {
	i := d.TableIndex(id)
	if i < 0 {
		return nil, NewNotFound("table", id)
	}
	return &d.Tables[i], nil
}

func (d *Document) Notification(id string) (Notification, int, error) {
	for i, n := range d.Notifications {
		if n.ID == id {
			return n, i, nil
		}
	}
	return Notification{}, -1, NewNotFound("notification", id)
}

// RemoveNotification drops a notification by id. Unknown ids are ignored:
// another client may already have consumed it.
func (d *Document) RemoveNotification(id string) bool {
	if id == "" {
		return false
	}
	for i, n := range d.Notifications {
		if n.ID == id {
			d.Notifications = append(d.Notifications[:i:i], d.Notifications[i+1:]...)
			return true
		}
	}
	return false
}

func (d *Document) RemoveNotificationsWhere(match func(Notification) bool) int {
	kept := make([]Notification, 0, len(d.Notifications))
	for _, n := range d.Notifications {
		if !match(n) {
			kept = append(kept, n)
		}
	}
	removed := len(d.Notifications) - len(kept)
	d.Notifications = kept
	return removed
}

func (d *Document) User(id string) (*User, error) {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return &d.Users[i], nil
		}
	}
	return nil, NewNotFound("user", id)
}

func (d *Document) MenuItem(id string) (MenuItem, error) {
	for _, m := range d.Menu {
		if m.ID == id {
			return m, nil
		}
	}
	return MenuItem{}, NewNotFound("menu item", id)
}

func (d *Document) UnmarshalJSON(data []byte) error {
	var raw struct {
		Tables        json.RawMessage `json:"tables"`
		Menu          json.RawMessage `json:"menu"`
		History       json.RawMessage `json:"history"`
		Notifications json.RawMessage `json:"notifications"`
		Users         json.RawMessage `json:"users"`
		BankConfig    BankConfig      `json:"bankConfig"`
		Reviews       json.RawMessage `json:"reviews"`
		LastUpdated   int64           `json:"lastUpdated"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out Document
	steps := []struct {
		name string
		fn   func() error
	}{
		{"tables", func() error { return decodeSeq(raw.Tables, &out.Tables) }},
		{"menu", func() error { return decodeSeq(raw.Menu, &out.Menu) }},
		{"history", func() error { return decodeSeq(raw.History, &out.History) }},
		{"notifications", func() error { return out.decodeNotifications(raw.Notifications) }},
		{"users", func() error { return decodeSeq(raw.Users, &out.Users) }},
		{"reviews", func() error { return decodeSeq(raw.Reviews, &out.Reviews) }},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			return fmt.Errorf("decode %s: %w", s.name, err)
		}
	}
	out.BankConfig = raw.BankConfig
	out.LastUpdated = raw.LastUpdated
	*d = out
	return nil
}

// decodeNotifications keeps every notification it can read and records the
// rest in DroppedNotifications.
func (d *Document) decodeNotifications(raw json.RawMessage) error {
	var items []json.RawMessage
	if err := decodeSeq(raw, &items); err != nil {
		return err
	}
	d.Notifications = make([]Notification, 0, len(items))
	for i, item := range items {
		var n Notification
		if err := json.Unmarshal(item, &n); err != nil {
			id := n.ID
			if id == "" {
				id = "#" + strconv.Itoa(i)
			}
			d.DroppedNotifications = append(d.DroppedNotifications, id)
			continue
		}
		d.Notifications = append(d.Notifications, n)
	}
	return nil
}

func (t *Table) UnmarshalJSON(data []byte) error {
	type plain Table
	var raw struct {
		plain
		CurrentOrders json.RawMessage `json:"currentOrders"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Table(raw.plain)
	return decodeSeq(raw.CurrentOrders, &t.CurrentOrders)
}

func (h *HistoryEntry) UnmarshalJSON(data []byte) error {
	type plain HistoryEntry
	var raw struct {
		plain
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*h = HistoryEntry(raw.plain)
	return decodeSeq(raw.Items, &h.Items)
}

// decodeSeq accepts a JSON array or a keyed object and always yields an
// ordered, non-nil slice. Some transports turn sparse arrays into
// {"0": ..., "3": ...} maps and drop holes as nulls; both shapes are normalized.
func decodeSeq[T any](raw json.RawMessage, out *[]T) error {
	raw = bytes.TrimSpace(raw)
	*out = []T{}
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	switch raw[0] {
	case '[':
		var items []*T
		if err := json.Unmarshal(raw, &items); err != nil {
			return err
		}
		for _, it := range items {
			if it != nil {
				*out = append(*out, *it)
			}
		}
		return nil
	case '{':
		var keyed map[string]*T
		if err := json.Unmarshal(raw, &keyed); err != nil {
			return err
		}
		keys := make([]string, 0, len(keyed))
		for k := range keyed {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return seqKeyLess(keys[i], keys[j]) })
		for _, k := range keys {
			if it := keyed[k]; it != nil {
				*out = append(*out, *it)
			}
		}
		return nil
	}
	return fmt.Errorf("expected array or object, got %q", raw[:1])
}

func seqKeyLess(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		return ai < bi
	case aerr == nil:
		return true
	case berr == nil:
		return false
	}
	return a < b
}
