package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_EmptySelectionYieldsZeroKeys(t *testing.T) {
	for _, set := range []Set{ForQueue(), ForTopic(), ForSubscription(), ForRule()} {
		values, err := set.Build(nil)
		require.NoError(t, err)
		assert.Empty(t, values, "unset options must be omitted, not sent as empty")

		values, err = set.Build(map[string]string{KeyDefaultMessageTimeToLive: ""})
		require.NoError(t, err)
		assert.Empty(t, values, "empty raw values must be skipped")
	}
}

func TestBuild_CoercesValues(t *testing.T) {
	values, err := ForTopic().Build(map[string]string{
		KeyMaxSizeInMegabytes:         "1024",
		KeyDefaultMessageTimeToLive:   "PT1H30M",
		KeyRequiresDuplicateDetection: "true",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1024), values[KeyMaxSizeInMegabytes])
	assert.Equal(t, "PT1H30M", values[KeyDefaultMessageTimeToLive])
	assert.Equal(t, true, values[KeyRequiresDuplicateDetection])
	assert.Len(t, values, 3)
}

func TestBuild_RejectsUnknownKey(t *testing.T) {
	_, err := ForQueue().Build(map[string]string{"NotAnOption": "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NotAnOption")
}

func TestBuild_NamesOffendingOption(t *testing.T) {
	_, err := ForSubscription().Build(map[string]string{KeyLockDuration: "90 seconds"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), KeyLockDuration)
}

func TestParseWholeNumber(t *testing.T) {
	opt, _ := ForQueue().ByKey(KeyMaxSizeInMegabytes)

	assert.Empty(t, opt.Validate("0"))
	assert.Empty(t, opt.Validate("5120"))
	assert.NotEmpty(t, opt.Validate("-1"))
	assert.NotEmpty(t, opt.Validate("ten"))
	assert.NotEmpty(t, opt.Validate("1.5"))
}

func TestParseISODuration(t *testing.T) {
	opt, _ := ForSubscription().ByKey(KeyLockDuration)

	for _, valid := range []string{"PT30S", "PT5M", "PT1H", "PT1H30M15S"} {
		assert.Empty(t, opt.Validate(valid), valid)
	}
	for _, invalid := range []string{"30s", "P1D", "PT90M", "1h"} {
		assert.NotEmpty(t, opt.Validate(invalid), invalid)
	}
}

func TestParseBool_Strict(t *testing.T) {
	opt, _ := ForTopic().ByKey(KeyEnablePartitioning)

	assert.Empty(t, opt.Validate("true"))
	assert.Empty(t, opt.Validate("false"))
	assert.NotEmpty(t, opt.Validate("True"))
	assert.NotEmpty(t, opt.Validate("1"))
	assert.NotEmpty(t, opt.Validate("yes"))
}

func TestForKindName(t *testing.T) {
	for _, kind := range []string{"queue", "topic", "subscription", "rule"} {
		set, ok := ForKindName(kind)
		assert.True(t, ok)
		assert.NotEmpty(t, set)
	}
	_, ok := ForKindName("exchange")
	assert.False(t, ok)
}
