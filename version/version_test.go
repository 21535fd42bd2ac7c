// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/jsonrest/apierror"
)

func TestParseNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		segment string
		want    Number
		wantErr bool
	}{
		{segment: "0.0", want: Number{0, 0}},
		{segment: "1.5", want: Number{1, 5}},
		{segment: "1.50", want: Number{1, 50}},
		{segment: "1.05", want: Number{1, 5}},
		{segment: "12.99", want: Number{12, 99}},
		{segment: "1", wantErr: true},
		{segment: "1.", wantErr: true},
		{segment: "1.234", wantErr: true},
		{segment: ".5", wantErr: true},
		{segment: "-1.0", wantErr: true},
		{segment: "1.5.0", wantErr: true},
		{segment: "v1.0", wantErr: true},
		{segment: "one.two", wantErr: true},
		{segment: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.segment, func(t *testing.T) {
			t.Parallel()
			got, err := ParseNumber(tt.segment)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformedNumber)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNumber_Compare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Number
		want int
	}{
		{name: "equal", a: Number{1, 5}, b: Number{1, 5}, want: 0},
		{name: "minor earlier", a: Number{1, 4}, b: Number{1, 5}, want: -1},
		{name: "minor later", a: Number{1, 9}, b: Number{1, 5}, want: 1},
		{name: "major dominates minor", a: Number{2, 0}, b: Number{1, 99}, want: 1},
		{name: "two digit minor beats one digit", a: Number{1, 12}, b: Number{1, 9}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.a.Compare(tt.b))
			assert.Equal(t, -tt.want, tt.b.Compare(tt.a))
		})
	}
}

func TestNumber_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0.0", Number{}.String())
	assert.Equal(t, "1.5", Number{1, 5}.String())
	assert.Equal(t, "12.99", Number{12, 99}.String())
}

func TestSpec_Matches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		spec      Spec
		requested Number
		want      bool
	}{
		{name: "exact hit", spec: MustNew(1, 5, Exact), requested: Number{1, 5}, want: true},
		{name: "exact rejects later minor", spec: MustNew(1, 5, Exact), requested: Number{1, 6}, want: false},
		{name: "exact rejects earlier minor", spec: MustNew(1, 5, Exact), requested: Number{1, 4}, want: false},

		{name: "following minor same version", spec: MustNew(1, 5, FollowingMinor), requested: Number{1, 5}, want: true},
		{name: "following minor later minor", spec: MustNew(1, 5, FollowingMinor), requested: Number{1, 9}, want: true},
		{name: "following minor rejects earlier minor", spec: MustNew(1, 5, FollowingMinor), requested: Number{1, 4}, want: false},
		{name: "following minor rejects major bump", spec: MustNew(1, 5, FollowingMinor), requested: Number{2, 0}, want: false},

		{name: "following major minor same version", spec: MustNew(0, 0, FollowingMajorMinor), requested: Number{0, 0}, want: true},
		{name: "following major minor later minor", spec: MustNew(0, 0, FollowingMajorMinor), requested: Number{0, 7}, want: true},
		{name: "following major minor later major", spec: MustNew(0, 0, FollowingMajorMinor), requested: Number{1, 0}, want: true},
		{name: "following major minor much later", spec: MustNew(0, 0, FollowingMajorMinor), requested: Number{2, 3}, want: true},
		{name: "following major minor rejects earlier minor", spec: MustNew(1, 5, FollowingMajorMinor), requested: Number{1, 4}, want: false},
		{name: "following major minor accepts major bump at lower minor", spec: MustNew(1, 5, FollowingMajorMinor), requested: Number{2, 0}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.spec.Matches(tt.requested))
		})
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		major  int
		minor  int
		policy MatchPolicy
	}{
		{name: "negative major", major: -1, minor: 0, policy: Exact},
		{name: "negative minor", major: 1, minor: -1, policy: Exact},
		{name: "minor beyond two digits", major: 1, minor: 100, policy: Exact},
		{name: "unknown policy", major: 1, minor: 0, policy: MatchPolicy(250)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(tt.major, tt.minor, tt.policy)
			require.Error(t, err)
			assert.Equal(t, apierror.KindConfiguration, apierror.KindOf(err))
		})
	}
}

func TestFromFloat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		literal float64
		want    Number
		wantErr bool
	}{
		{name: "whole number", literal: 1, want: Number{1, 0}},
		{name: "one decimal digit", literal: 1.5, want: Number{1, 5}},
		{name: "two decimal digits", literal: 1.23, want: Number{1, 23}},
		{name: "zero", literal: 0.0, want: Number{0, 0}},
		{name: "three decimal digits", literal: 1.234, wantErr: true},
		{name: "negative", literal: -1.0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			spec, err := FromFloat(tt.literal, Exact)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apierror.KindConfiguration, apierror.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, spec.Number())
		})
	}
}

func TestMustFromFloat_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { MustFromFloat(1.234, Exact) })
	assert.NotPanics(t, func() { MustFromFloat(1.25, FollowingMinor) })
}

func TestSpec_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1.5", MustNew(1, 5, Exact).String())
	assert.Equal(t, "1.5+", MustNew(1, 5, FollowingMinor).String())
	assert.Equal(t, "0.0++", MustNew(0, 0, FollowingMajorMinor).String())
}

func TestMatchPolicy_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "exact", Exact.String())
	assert.Equal(t, "following_minor", FollowingMinor.String())
	assert.Equal(t, "following_major_minor", FollowingMajorMinor.String())
	assert.Equal(t, "invalid", MatchPolicy(9).String())
}
