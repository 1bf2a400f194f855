package models

// Page параметры пагинации списков.
type Page struct {
	Limit  int
	Offset int
}

// PageResult страница списка с общим количеством записей.
type PageResult[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}
