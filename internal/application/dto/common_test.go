package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequest_Normalize(t *testing.T) {
	cases := []struct {
		in, want PageRequest
	}{
		{PageRequest{Page: 0, PageSize: 0}, PageRequest{Page: 1, PageSize: 20}},
		{PageRequest{Page: -3, PageSize: 500}, PageRequest{Page: 1, PageSize: 100}},
		{PageRequest{Page: 2, PageSize: 10}, PageRequest{Page: 2, PageSize: 10}},
	}
	for _, c := range cases {
		p := c.in
		p.Normalize()
		assert.Equal(t, c.want, p)
	}

	p := PageRequest{Page: 3, PageSize: 25}
	assert.Equal(t, 50, p.Offset())
}
