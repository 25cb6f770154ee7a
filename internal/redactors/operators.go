// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redactors

import "strconv"

// operator renders the placeholder for one span. Each Session owns one operator.
type operator interface {
	replace(original, entityType string) string
}

func newOperator(style PlaceholderStyle) operator {
	if style == PlaceholderIndexed {
		return &indexedOperator{
			seen: make(map[string]map[string]int),
		}
	}
	return entityOperator{}
}

type entityOperator struct{}

func (entityOperator) replace(_, entityType string) string {
	return "<" + entityType + ">"
}

// indexedOperator gives each distinct original of a type its own number
type indexedOperator struct {
	seen map[string]map[string]int
}

func (o *indexedOperator) replace(original, entityType string) string {
	byOriginal, ok := o.seen[entityType]
	if !ok {
		byOriginal = make(map[string]int)
		o.seen[entityType] = byOriginal
	}
	n, ok := byOriginal[original]
	if !ok {
		n = len(byOriginal) + 1
		byOriginal[original] = n
	}
	return "<" + entityType + "_" + strconv.Itoa(n) + ">"
}
