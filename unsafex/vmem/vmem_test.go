/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package vmem

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserve(t *testing.T) {
	page := PageSize()
	r, err := Reserve(4*page+1, 1)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 5*page, r.Size())
	assert.Equal(t, page, r.Step())
	assert.Equal(t, page, r.Committed())
	assert.Equal(t, 5*page, len(r.Bytes()))

	// committed bytes are usable
	b := r.Bytes()[:r.Committed()]
	for i := range b {
		b[i] = byte(i)
	}

	for i := 2; i <= 5; i++ {
		n, err := r.Commit()
		require.NoError(t, err)
		require.Equal(t, i*page, n)
	}
	n, err := r.Commit()
	assert.True(t, errors.Is(err, ErrExhausted))
	assert.Equal(t, 5*page, n)

	b = r.Bytes()
	b[len(b)-1] = 1
	assert.Equal(t, byte(7), b[7])
}

func TestReserveStep(t *testing.T) {
	page := PageSize()
	r, err := Reserve(2*page, 0)
	require.NoError(t, err)
	defer r.Close()
	// DefaultStep capped at the reservation
	assert.Equal(t, min(roundUp(DefaultStep, page), 2*page), r.Step())

	_, err = Reserve(0, page)
	assert.Error(t, err)
}

func TestClose(t *testing.T) {
	r, err := Reserve(PageSize(), PageSize())
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.Nil(t, r.Bytes())
	_, err = r.Commit()
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrExhausted))
}

func TestRoundUp(t *testing.T) {
	assert.Equal(t, 0, roundUp(0, 4096))
	assert.Equal(t, 4096, roundUp(1, 4096))
	assert.Equal(t, 4096, roundUp(4096, 4096))
	assert.Equal(t, 8192, roundUp(4097, 4096))
}
