// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"sort"
	"time"
)

// Category is a named node in the category tree. Names are globally unique.
// A category has at most one parent; children are derived by looking up
// categories whose ParentID points at this one.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ParentID  *int64    `json:"parentId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsRoot reports whether the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// SortByName orders categories lexicographically by name, in place.
func SortByName(cats []Category) {
	sort.SliceStable(cats, func(i, j int) bool {
		return cats[i].Name < cats[j].Name
	})
}
