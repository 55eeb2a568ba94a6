package db

import _ "embed"

//go:embed schema.sql
var Schema string

// MenuInfoID is the fixed primary key of the menu_info singleton.
const MenuInfoID = 1

const (
	DINNER_KIND_SOUP = "soup"
	DINNER_KIND_MAIN = "main"
)

const (
	EXTRA_CATEGORY_FILLER   = "filler"
	EXTRA_CATEGORY_BEVERAGE = "beverage"
	EXTRA_CATEGORY_SALAD    = "salad"
)
