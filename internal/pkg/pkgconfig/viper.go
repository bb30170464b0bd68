package pkgconfig

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "CHEMVIS"

// Viper reads settings from one YAML file plus CHEMVIS_* environment
// overrides.
type Viper struct {
	v *viper.Viper
}

// NewViper reads pathFile. Keys in defaults apply when neither the file nor
// the environment sets them.
func NewViper(pathFile string, defaults map[string]any) (*Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(pathFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	return &Viper{v: v}, nil
}

func (vc *Viper) GetInt(key string) int64 {
	return vc.v.GetInt64(key)
}

func (vc *Viper) GetBool(key string) bool {
	return vc.v.GetBool(key)
}

func (vc *Viper) GetString(key string) string {
	return vc.v.GetString(key)
}

func (vc *Viper) GetArray(key string) []string {
	var parts []string
	if raw, ok := vc.v.Get(key).(string); ok {
		parts = strings.Split(raw, ",")
	} else {
		parts = vc.v.GetStringSlice(key)
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}

	return out
}

// Close is a no-op. Viper holds no open handles once the file is read.
func (vc *Viper) Close() error {
	return nil
}
