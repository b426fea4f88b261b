package providers

import (
	"os"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/webhookx-io/showgate/utils"
)

// EnvProvider loads configuration from environment variables named after the
// yaml path of each field, e.g. SHOWGATE_STORE_CACHE_L1_TTL.
type EnvProvider struct {
	prefix string
	env    map[string]string
}

func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{prefix: prefix}
}

func (p *EnvProvider) WithEnv(env map[string]string) *EnvProvider {
	p.env = env
	return p
}

func (p *EnvProvider) lookup(key string) (string, bool) {
	if p.env != nil {
		value, ok := p.env[key]
		return value, ok
	}
	return os.LookupEnv(key)
}

func (p *EnvProvider) Load(cfg any) error {
	t := reflect.TypeOf(cfg)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	values := p.collect(t, p.prefix)
	if len(values) == 0 {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "yaml",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(values)
}

func (p *EnvProvider) collect(t reflect.Type, prefix string) map[string]interface{} {
	values := make(map[string]interface{})
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name, opts, _ := strings.Cut(field.Tag.Get("yaml"), ",")
		if name == "-" || opts == "inline" || !field.IsExported() {
			continue
		}
		if name == "" {
			name = strings.ToLower(field.Name)
		}
		key := prefix + "_" + strings.ToUpper(name)
		ft := field.Type
		switch {
		case ft.Kind() == reflect.Struct:
			if nested := p.collect(ft, key); len(nested) > 0 {
				utils.MergeMap(values, map[string]interface{}{name: nested})
			}
		case ft.Kind() == reflect.Map || ft.Kind() == reflect.Slice:
			// collections are yaml only
		default:
			if value, ok := p.lookup(key); ok {
				values[name] = value
			}
		}
	}
	return values
}
