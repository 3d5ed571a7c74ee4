package lpt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lpt-gateway/internal/domain"
	"github.com/lpt-gateway/internal/pkg/validator"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DefaultDocumentPath is where the provider document lives unless configured otherwise.
const DefaultDocumentPath = "/usr/local/etc/lpt.json"

// ProviderEntry is one element of the "clients" section.
type ProviderEntry struct {
	Type         string `yaml:"type" validate:"required,protocol"`
	URL          string `yaml:"url" validate:"required,url"`
	Source       string `yaml:"source" validate:"required"`
	RequestorRef string `yaml:"requestor_ref"`
	AccessID     string `yaml:"access_id"`
	Version      string `yaml:"version"`
	UserAgent    string `yaml:"user_agent"`
	FixAddress   *bool  `yaml:"fix_address"`
	Validate     *bool  `yaml:"validate"`
	Debug        *bool  `yaml:"debug"`
}

// ToConfig validates the entry and converts it into a provider configuration.
func (e ProviderEntry) ToConfig(name string) (domain.ProviderConfig, error) {
	if err := validator.Validate(e); err != nil {
		return domain.ProviderConfig{}, fmt.Errorf("invalid client entry: %w", err)
	}

	protocol, err := domain.ParseProtocolType(e.Type)
	if err != nil {
		return domain.ProviderConfig{}, err
	}

	credentials := make(map[string]string, 1)
	switch protocol {
	case domain.ProtocolTRIAS:
		if e.RequestorRef == "" {
			return domain.ProviderConfig{}, fmt.Errorf("no %s specified", domain.CredentialRequestorRef)
		}
		credentials[domain.CredentialRequestorRef] = e.RequestorRef
	case domain.ProtocolHAFAS:
		if e.AccessID == "" {
			return domain.ProviderConfig{}, fmt.Errorf("no %s specified", domain.CredentialAccessID)
		}
		credentials[domain.CredentialAccessID] = e.AccessID
	}

	return domain.ProviderConfig{
		Name:               name,
		ProtocolType:       protocol,
		Endpoint:           e.URL,
		Source:             e.Source,
		Version:            e.Version,
		UserAgent:          e.UserAgent,
		Credentials:        credentials,
		FixAddressEncoding: boolOr(e.FixAddress, false),
		Validate:           boolOr(e.Validate, true),
		Debug:              boolOr(e.Debug, false),
	}, nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// ClientEntry is a named client entry. Err is set when the entry could not
// be decoded; such entries are skipped by the registry.
type ClientEntry struct {
	Name  string
	Entry ProviderEntry
	Err   error
}

// MappingEntry holds the postal code ranges declared for one provider.
// Err collects ranges that could not be decoded, the valid ones are kept.
type MappingEntry struct {
	Provider string
	Ranges   []domain.PostalCodeRange
	Err      error
}

// Document is the declarative provider configuration. Both sections keep
// declaration order.
type Document struct {
	Clients []ClientEntry
	Map     []MappingEntry
}

func (d *Document) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.DocumentNode && len(value.Content) > 0 {
		value = value.Content[0]
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: provider document must be a mapping", value.Line)
	}

	for i := 0; i+1 < len(value.Content); i += 2 {
		key, section := value.Content[i], value.Content[i+1]
		switch key.Value {
		case "clients":
			clients, err := decodeClients(section)
			if err != nil {
				return err
			}
			d.Clients = clients
		case "map":
			mappings, err := decodeMappings(section)
			if err != nil {
				return err
			}
			d.Map = mappings
		}
	}
	return nil
}

func decodeClients(section *yaml.Node) ([]ClientEntry, error) {
	if isNull(section) {
		return nil, nil
	}
	if section.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: clients must be a mapping", section.Line)
	}

	clients := make([]ClientEntry, 0, len(section.Content)/2)
	for i := 0; i+1 < len(section.Content); i += 2 {
		entry := ClientEntry{Name: section.Content[i].Value}
		if err := section.Content[i+1].Decode(&entry.Entry); err != nil {
			entry.Err = err
		}
		clients = append(clients, entry)
	}
	return clients, nil
}

func decodeMappings(section *yaml.Node) ([]MappingEntry, error) {
	if isNull(section) {
		return nil, nil
	}
	if section.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: map must be a mapping", section.Line)
	}

	mappings := make([]MappingEntry, 0, len(section.Content)/2)
	for i := 0; i+1 < len(section.Content); i += 2 {
		entry := MappingEntry{Provider: section.Content[i].Value}
		ranges := section.Content[i+1]

		if ranges.Kind != yaml.SequenceNode {
			entry.Err = fmt.Errorf("line %d: ranges of %s must be a list", ranges.Line, entry.Provider)
			mappings = append(mappings, entry)
			continue
		}

		var errs []error
		for _, item := range ranges.Content {
			var pair []int
			if err := item.Decode(&pair); err != nil {
				errs = append(errs, err)
				continue
			}
			if len(pair) != 2 {
				errs = append(errs, fmt.Errorf("line %d: invalid postal code range %v", item.Line, pair))
				continue
			}
			rng := domain.PostalCodeRange{Start: pair[0], End: pair[1]}
			if err := rng.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("line %d: %w", item.Line, err))
				continue
			}
			entry.Ranges = append(entry.Ranges, rng)
		}
		entry.Err = errors.Join(errs...)
		mappings = append(mappings, entry)
	}
	return mappings, nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

// DocumentFormat selects the syntax of a provider document.
type DocumentFormat int

const (
	FormatJSON DocumentFormat = iota
	FormatYAML
)

// FormatFromPath picks YAML for .yaml/.yml files and JSON otherwise.
func FormatFromPath(path string) DocumentFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ParseDocument decodes a provider document. Empty input yields an empty document.
func ParseDocument(data []byte, format DocumentFormat) (*Document, error) {
	doc := &Document{}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}

	var root yaml.Node
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		node, err := jsonNode(dec)
		if err != nil {
			return nil, fmt.Errorf("failed to parse json: %w", err)
		}
		if _, err := dec.Token(); err != io.EOF {
			return nil, fmt.Errorf("failed to parse json: trailing data")
		}
		root = *node
	}

	if err := root.Decode(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// jsonNode reads one JSON value into a yaml node tree. encoding/json maps
// lose key order, the node tree keeps it.
func jsonNode(dec *json.Decoder) (*yaml.Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", keyTok)
				}
				value, err := jsonNode(dec)
				if err != nil {
					return nil, err
				}
				node.Content = append(node.Content, scalar("!!str", key), value)
			}
			_, err := dec.Token()
			return node, err
		case '[':
			node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
			for dec.More() {
				value, err := jsonNode(dec)
				if err != nil {
					return nil, err
				}
				node.Content = append(node.Content, value)
			}
			_, err := dec.Token()
			return node, err
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", t)
		}
	case string:
		return scalar("!!str", t), nil
	case json.Number:
		if _, err := t.Int64(); err == nil {
			return scalar("!!int", t.String()), nil
		}
		return scalar("!!float", t.String()), nil
	case bool:
		return scalar("!!bool", strconv.FormatBool(t)), nil
	case nil:
		return scalar("!!null", "null"), nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

// DocumentLoader reads the provider document.
type DocumentLoader interface {
	Load(ctx context.Context) (*Document, error)
}

// FileDocumentLoader reads the provider document from disk. A missing
// file is logged and treated as an empty document.
type FileDocumentLoader struct {
	Path   string
	Logger *zap.Logger
}

func NewFileDocumentLoader(path string, logger *zap.Logger) *FileDocumentLoader {
	if path == "" {
		path = DefaultDocumentPath
	}
	return &FileDocumentLoader{Path: path, Logger: logger}
}

func (l *FileDocumentLoader) Load(ctx context.Context) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(l.Path)
	if errors.Is(err, fs.ErrNotExist) {
		l.Logger.Error("Provider document not found", zap.String("path", l.Path))
		return &Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read provider document: %w", err)
	}

	doc, err := ParseDocument(data, FormatFromPath(l.Path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.Path, err)
	}
	return doc, nil
}
