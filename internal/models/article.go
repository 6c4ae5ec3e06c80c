// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Article is a titled entry owned by exactly one user and optionally filed
// under a category. AuthorID never changes after creation.
type Article struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	AuthorID   int64     `json:"authorId"`
	CategoryID *int64    `json:"categoryId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	// Virtual fields populated by store methods.
	AuthorNickname string `json:"authorNickname"`
	CategoryName   string `json:"categoryName,omitempty"`
}

// IsWrittenBy reports whether userID is the article's author.
func (a *Article) IsWrittenBy(userID int64) bool {
	return a.AuthorID == userID
}

// InCategory reports whether the article is filed under categoryID.
// Uncategorised articles are in no category.
func (a *Article) InCategory(categoryID int64) bool {
	return a.CategoryID != nil && *a.CategoryID == categoryID
}

// Update replaces title and content in place.
func (a *Article) Update(title, content string) {
	a.Title = title
	a.Content = content
}

// UpdateWithCategory replaces title, content and category in place. A nil
// categoryID clears the category.
func (a *Article) UpdateWithCategory(title, content string, categoryID *int64, categoryName string) {
	a.Update(title, content)
	a.CategoryID = categoryID
	a.CategoryName = categoryName
}
