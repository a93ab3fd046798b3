package gen_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.l1config.dev/compiler/gen"
	"go.l1config.dev/compiler/stringtest"
)

func TestEmit(t *testing.T) {
	t.Parallel()

	m := loadFixture(t)
	outDir := t.TempDir()

	require.NoError(t, gen.Emit(m, outDir))

	typesHeader, err := os.ReadFile(filepath.Join(outDir, "include", "l1_config_types.h"))
	require.NoError(t, err)

	wantEnumBlock := stringtest.JoinLF(
		"enum ChannelId {",
		"    ChannelId_CH0 = 0,",
		"    ChannelId_CH1 = 1,",
		"};",
	)
	assert.Contains(t, string(typesHeader), wantEnumBlock)
	assert.Contains(t, string(typesHeader), "struct Radio {")
	assert.Contains(t, string(typesHeader), "struct ChannelConfig {")

	getterHeader, err := os.ReadFile(filepath.Join(outDir, "include", "l1_config_getter.h"))
	require.NoError(t, err)
	assert.Contains(t, string(getterHeader), "int8_t l1_config_read_ChannelConfig_power(void);")
	assert.Contains(t, string(getterHeader), "bool l1_config_policy_check_power(int8_t value);")

	keysHeader, err := os.ReadFile(filepath.Join(outDir, "include", "l1_config_keys.h"))
	require.NoError(t, err)
	assert.Contains(t, string(keysHeader), "#define BUF_SIZE 2")
	assert.Contains(t, string(keysHeader), "#define CHANNELID_NUM 2")
	assert.Contains(t, string(keysHeader), "#define L1_CONFIG_NUM_KEYS 6")
	assert.Contains(t, string(keysHeader), "L1_CONFIG_KEY_CHANNELS_CH0_POWER = 0,")

	keysSource, err := os.ReadFile(filepath.Join(outDir, "src", "l1_config_keys.c"))
	require.NoError(t, err)
	assert.Contains(t, string(keysSource), `"channels[CH0].power",`)
	assert.Contains(t, string(keysSource), `"history",`)

	assert.Contains(t, string(keysSource), "const struct l1_config_key_descriptor l1_config_keys[L1_CONFIG_NUM_KEYS] = {")
	assert.Contains(t, string(keysSource), `.default_value = "0",`)
	assert.Contains(t, string(keysSource), `.default_value = "{0, 0}",`)
	assert.Contains(t, string(keysSource), ".getter = (void *)l1_config_read_Radio_gain,")
	assert.Contains(t, string(keysSource), ".checker = NULL,")

	assert.Contains(t, string(keysHeader), "struct l1_config_key_descriptor {")
	assert.Contains(t, string(keysHeader), "extern const struct l1_config_key_descriptor l1_config_keys[L1_CONFIG_NUM_KEYS];")
}
