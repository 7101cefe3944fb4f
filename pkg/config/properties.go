package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/magiconair/properties"
	"gopkg.in/yaml.v3"

	"github.com/streamweave/streamweave/pkg/errors"
)

// LoadProperties reads a flat property file into a raw map suitable for
// NewStreamsConfig. Java-style .properties files and flat YAML files are
// both accepted, keyed off the file extension. ${VAR_NAME} references are
// substituted from the environment before parsing.
func LoadProperties(filePath string) (map[string]interface{}, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec // G304: path is caller-controlled
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to read config file")
	}

	content := substituteEnvVars(string(data))

	if strings.HasSuffix(filePath, ".yaml") || strings.HasSuffix(filePath, ".yml") {
		return loadYAMLProps(content)
	}
	return loadJavaProps(content)
}

// LoadStreamsConfig is the one-call path from a property file to a
// validated config.
func LoadStreamsConfig(filePath string) (*StreamsConfig, error) {
	raw, err := LoadProperties(filePath)
	if err != nil {
		return nil, err
	}
	return NewStreamsConfig(raw)
}

func loadJavaProps(content string) (map[string]interface{}, error) {
	p, err := properties.Load([]byte(content), properties.UTF8)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse properties")
	}
	raw := make(map[string]interface{}, p.Len())
	for _, key := range p.Keys() {
		raw[key], _ = p.Get(key)
	}
	return raw, nil
}

// loadYAMLProps flattens nested YAML maps into dotted keys, since the
// property set is flat by contract.
func loadYAMLProps(content string) (map[string]interface{}, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse YAML")
	}
	raw := make(map[string]interface{}, len(doc))
	flattenInto(raw, "", doc)
	return raw, nil
}

func flattenInto(out map[string]interface{}, prefix string, node map[string]interface{}) {
	for key, value := range node {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if child, ok := value.(map[string]interface{}); ok {
			flattenInto(out, full, child)
			continue
		}
		out[full] = value
	}
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
func substituteEnvVars(content string) string {
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		varName := content[start+2 : end]
		content = content[:start] + os.Getenv(varName) + content[end+1:]
	}
	return content
}

// WriteProperties serializes a raw map back to Java properties form, keys
// sorted by the underlying writer. Useful for dumping resolved client maps.
func WriteProperties(filePath string, raw map[string]interface{}) error {
	p := properties.NewProperties()
	for key, value := range raw {
		if _, _, err := p.Set(key, fmt.Sprintf("%v", value)); err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "failed to encode properties")
		}
	}
	f, err := os.Create(filePath) //nolint:gosec // G304: path is caller-controlled
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to create output file")
	}
	defer f.Close()
	if _, err := p.Write(f, properties.UTF8); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to write properties")
	}
	return nil
}
