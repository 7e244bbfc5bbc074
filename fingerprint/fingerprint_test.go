package fingerprint

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePayload() Payload {
	return Payload{
		StudentName:     "Jane Doe",
		InstitutionName: "MIT",
		CourseName:      "CS101",
		IssueDate:       "2026-08-30",
	}
}

func TestComputeDeterministic(t *testing.T) {
	first, err := Compute(samplePayload())
	require.NoError(t, err)

	second, err := Compute(samplePayload())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), first)
}

func TestComputeChangesWithAnyField(t *testing.T) {
	base, err := Compute(samplePayload())
	require.NoError(t, err)

	mutations := map[string]Payload{}

	p := samplePayload()
	p.StudentName = "Jane Does"
	mutations["studentName"] = p

	p = samplePayload()
	p.InstitutionName = "MIT "
	mutations["institutionName"] = p

	p = samplePayload()
	p.CourseName = "CS102"
	mutations["courseName"] = p

	p = samplePayload()
	p.IssueDate = "2026-08-31"
	mutations["issueDate"] = p

	p = samplePayload()
	p.ExpiryDate = "2030-01-01"
	mutations["expiryDate"] = p

	p = samplePayload()
	p.Metadata = map[string]string{"honors": "cum laude"}
	mutations["metadata"] = p

	for field, mutated := range mutations {
		digest, err := Compute(mutated)
		require.NoError(t, err, field)
		assert.NotEqual(t, base, digest, "changing %s must change the digest", field)
	}
}

func TestMetadataKeyOrderDoesNotMatter(t *testing.T) {
	a := samplePayload()
	a.Metadata = map[string]string{}
	a.Metadata["zeta"] = "1"
	a.Metadata["alpha"] = "2"
	a.Metadata["mid"] = "3"

	b := samplePayload()
	b.Metadata = map[string]string{}
	b.Metadata["alpha"] = "2"
	b.Metadata["mid"] = "3"
	b.Metadata["zeta"] = "1"

	digestA, err := Compute(a)
	require.NoError(t, err)
	digestB, err := Compute(b)
	require.NoError(t, err)

	assert.Equal(t, digestA, digestB)
}

func TestAbsentOptionalFieldsEqualExplicitDefaults(t *testing.T) {
	implicit := samplePayload()

	explicit := samplePayload()
	explicit.ExpiryDate = ""
	explicit.Metadata = map[string]string{}

	a, err := Compute(implicit)
	require.NoError(t, err)
	b, err := Compute(explicit)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestMissingRequiredFieldFailsFast(t *testing.T) {
	cases := map[string]func(*Payload){
		"studentName":     func(p *Payload) { p.StudentName = "" },
		"institutionName": func(p *Payload) { p.InstitutionName = "" },
		"courseName":      func(p *Payload) { p.CourseName = "" },
		"issueDate":       func(p *Payload) { p.IssueDate = "" },
	}

	for field, clear := range cases {
		p := samplePayload()
		clear(&p)
		_, err := Compute(p)
		require.ErrorIs(t, err, ErrMissingField, field)
		assert.Contains(t, err.Error(), field)
	}
}

func TestFromCanonicalMatchesCompute(t *testing.T) {
	p := samplePayload()
	canonical, err := p.Canonical()
	require.NoError(t, err)

	digest, err := Compute(p)
	require.NoError(t, err)

	assert.Equal(t, digest, FromCanonical(canonical))
}

func TestShort(t *testing.T) {
	v, err := Short("deadbeef00000000000000000000000000000000000000000000000000000000")
	require.NoError(t, err)
	assert.Equal(t, uint64(0xdeadbeef), v)

	digest, err := Compute(samplePayload())
	require.NoError(t, err)

	v, err = Short(digest)
	require.NoError(t, err)

	var expected uint64
	for _, ch := range digest[:8] {
		expected *= 16
		switch {
		case ch >= '0' && ch <= '9':
			expected += uint64(ch - '0')
		default:
			expected += uint64(ch-'a') + 10
		}
	}
	assert.Equal(t, expected, v)
}

func TestShortRejectsBadDigest(t *testing.T) {
	_, err := Short("abc")
	assert.Error(t, err)

	_, err = Short("zzzzzzzz00")
	assert.Error(t, err)
}
