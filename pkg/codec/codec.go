// Package codec converts settings collections to and from name/value records
// and their JSON encodings.
package codec

import (
	settings "github.com/goliatone/go-settings"
)

// Serialize lists the non-empty items of c in key order.
func Serialize(c *settings.Collection) []Record {
	if c == nil {
		return nil
	}
	records := make([]Record, 0, c.Len())
	c.Each(func(name string, item *settings.Item) bool {
		if item.Kind() != settings.KindEmpty {
			records = append(records, Record{Name: name, Value: ValueOf(item)})
		}
		return true
	})
	return records
}

// Deserialize builds a new collection from records.
func Deserialize(records []Record, opts ...settings.Option) *settings.Collection {
	c := settings.NewCollection(opts...)
	Populate(c, records)
	return c
}

// Populate clears c and adds every record in order. A repeated name follows
// the collection's Add rules, so a later record of the same kind overwrites and
// dirties the earlier one while a record of a different kind is discarded.
func Populate(c *settings.Collection, records []Record) {
	if c == nil {
		return
	}
	c.Clear()
	for _, record := range records {
		c.Add(record.Name, record.Value.Item())
	}
}
