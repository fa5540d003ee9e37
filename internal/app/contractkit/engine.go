package contractkit

import (
	"encoding/json"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DefaultStatusCode is assumed when a caller does not name one.
const DefaultStatusCode = 200

const extractionCacheSize = 256

type Config struct {
	ContractsBasePath string           `env:"CONTRACTS_BASE_PATH" yaml:"contractsBasePath"`
	Validation        ValidationConfig `env:",prefix=VALIDATION_" yaml:"validation"`
	Mock              MockConfig       `env:",prefix=MOCK_" yaml:"mock"`
}

type ValidationConfig struct {
	StrictMode           bool `env:"STRICT_MODE" yaml:"strictMode"`
	AllowExtraProperties bool `env:"ALLOW_EXTRA_PROPERTIES" yaml:"allowExtraProperties"`
	ValidateTypes        bool `env:"VALIDATE_TYPES" yaml:"validateTypes"`
	ValidatePaths        bool `env:"VALIDATE_PATHS" yaml:"validatePaths"`
}

type MockConfig struct {
	GenerateRealisticData bool   `env:"REALISTIC_DATA" yaml:"generateRealisticData"`
	Locale                string `env:"LOCALE" yaml:"locale"`
	Seed                  int64  `env:"SEED" yaml:"seed"`
	// CustomGenerators is set programmatically, never from env or file.
	CustomGenerators map[string]FieldGenerator `yaml:"-" json:"-"`
}

func DefaultConfig() Config {
	return Config{
		ContractsBasePath: "contracts",
		Validation: ValidationConfig{
			StrictMode:           true,
			AllowExtraProperties: false,
			ValidateTypes:        true,
			ValidatePaths:        true,
		},
		Mock: MockConfig{
			GenerateRealisticData: true,
			Locale:                "en-US",
			Seed:                  time.Now().UnixNano(),
		},
	}
}

// Engine owns the contract extraction cache and exposes every capability as
// a method. Extractions are immutable once cached, so concurrent calls need
// no coordination beyond the cache's own locking.
type Engine struct {
	config Config
	loader *SourceLoader
	cache  *lru.Cache[string, *Extraction]

	mu          sync.Mutex
	initialized bool
}

func NewEngine(config Config) (*Engine, error) {
	cache, err := lru.New[string, *Extraction](extractionCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create extraction cache")
	}
	return &Engine{
		config: config,
		loader: NewSourceLoader(config.ContractsBasePath),
		cache:  cache,
	}, nil
}

// Initialize pre-parses every contract under the contracts root. Idempotent.
// A missing or unreadable root degrades to per-contract errors on later
// calls instead of failing the engine.
func (e *Engine) Initialize() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.initialized {
		return nil
	}

	files, err := listContractFiles(e.config.ContractsBasePath)
	if err != nil {
		log.Warnf("contracts directory %q is not accessible: %s", e.config.ContractsBasePath, err)
		e.initialized = true
		return nil
	}
	for _, location := range files {
		src, err := e.loader.Load(location)
		if err != nil {
			log.Warnf("skipping contract: %s", err)
			continue
		}
		e.cache.Add(location, Extract(location, src))
	}
	log.Infof("loaded %d contract(s) from %q", e.cache.Len(), e.config.ContractsBasePath)
	e.initialized = true
	return nil
}

// Cleanup releases the extraction cache. The engine can be initialized
// again afterwards; re-initialization replaces the cache contents wholesale.
func (e *Engine) Cleanup() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache.Purge()
	e.initialized = false
}

// ContractFiles lists contract source files under the contracts root.
func (e *Engine) ContractFiles() ([]string, error) {
	return listContractFiles(e.config.ContractsBasePath)
}

func listContractFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".go") && !strings.HasSuffix(path, "_test.go") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to list contracts under %q", root)
	}
	return files, nil
}

// extraction resolves a reference, reusing the cached extraction when one
// exists. Contract files are assumed immutable for the engine's lifetime.
func (e *Engine) extraction(ref string) (*Extraction, error) {
	location := e.loader.Resolve(ref)
	if ext, ok := e.cache.Get(location); ok {
		return ext, nil
	}
	src, err := e.loader.Load(location)
	if err != nil {
		return nil, err
	}
	ext := Extract(location, src)
	e.cache.Add(location, ext)
	return ext, nil
}

func (e *Engine) ValidateContract(ref string) ValidationResult {
	ext, err := e.extraction(ref)
	if err != nil {
		return failedValidation(err)
	}
	return ValidateContract(ext)
}

func (e *Engine) ValidateRequestType(ref string) ValidationResult {
	ext, err := e.extraction(ref)
	if err != nil {
		return failedValidation(err)
	}
	return ValidateRequestType(ext)
}

func (e *Engine) ValidateResponseType(ref string) ValidationResult {
	ext, err := e.extraction(ref)
	if err != nil {
		return failedValidation(err)
	}
	return ValidateResponseType(ext)
}

func (e *Engine) ValidateRequestAgainstContract(ref string, request []byte) ValidationResult {
	ext, err := e.extraction(ref)
	if err != nil {
		return failedValidation(err)
	}
	return ValidateRequestAgainstContract(ext, request)
}

func (e *Engine) ValidateResponseAgainstContract(ref string, response []byte, statusCode int) ValidationResult {
	ext, err := e.extraction(ref)
	if err != nil {
		return failedValidation(err)
	}
	return ValidateResponseAgainstContract(ext, response, statusCode)
}

func (e *Engine) GenerateMockResponse(ref string, statusCode int) MockResult {
	ext, err := e.extraction(ref)
	if err != nil {
		log.Errorf("unable to generate mock: %s", err)
		return MockResult{Success: false, Type: "error"}
	}
	return GenerateMock(ext, statusCode, e.config.Mock)
}

// CreateMockRequest is a stub: it reports an empty structure.
func (e *Engine) CreateMockRequest(ref string) MockResult {
	log.Warnf("createMockRequest is not implemented, returning an empty structure for %q", ref)
	return MockResult{Success: true, Data: map[string]interface{}{}, Type: "stub"}
}

// GenerateTypes is a stub.
func (e *Engine) GenerateTypes(ref string) MockResult {
	log.Warnf("generateTypes is not implemented, doing nothing for %q", ref)
	return MockResult{Success: true, Type: "stub"}
}

// CheckTypeExistence is a stub that always reports true.
func (e *Engine) CheckTypeExistence(ref, typeName string) bool {
	log.Warnf("checkTypeExistence is not implemented, reporting %q as existing in %q", typeName, ref)
	return true
}

// CheckTypeProperty is a stub that always reports true.
func (e *Engine) CheckTypeProperty(ref, typeName, propertyName string) bool {
	log.Warnf("checkTypeProperty is not implemented, reporting %s.%s as existing in %q",
		typeName, propertyName, ref)
	return true
}

// CapabilityArgs is the argument envelope a host framework passes when
// invoking a registered capability.
type CapabilityArgs struct {
	Ref          string          `json:"ref"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	StatusCode   int             `json:"statusCode,omitempty"`
	TypeName     string          `json:"typeName,omitempty"`
	PropertyName string          `json:"propertyName,omitempty"`
}

func (a CapabilityArgs) statusOrDefault() int {
	if a.StatusCode == 0 {
		return DefaultStatusCode
	}
	return a.StatusCode
}

// CapabilityFunc is one independently invocable operation.
type CapabilityFunc func(args CapabilityArgs) interface{}

// Capabilities is the registration surface consumed by a host test
// framework: named operations keyed the way callers invoke them.
func (e *Engine) Capabilities() map[string]CapabilityFunc {
	return map[string]CapabilityFunc{
		"validateContract": func(a CapabilityArgs) interface{} {
			return e.ValidateContract(a.Ref)
		},
		"validateRequestType": func(a CapabilityArgs) interface{} {
			return e.ValidateRequestType(a.Ref)
		},
		"validateResponseType": func(a CapabilityArgs) interface{} {
			return e.ValidateResponseType(a.Ref)
		},
		"validateRequestAgainstContract": func(a CapabilityArgs) interface{} {
			return e.ValidateRequestAgainstContract(a.Ref, a.Payload)
		},
		"validateResponseAgainstContract": func(a CapabilityArgs) interface{} {
			return e.ValidateResponseAgainstContract(a.Ref, a.Payload, a.statusOrDefault())
		},
		"generateMockResponse": func(a CapabilityArgs) interface{} {
			return e.GenerateMockResponse(a.Ref, a.statusOrDefault())
		},
		"createMockRequest": func(a CapabilityArgs) interface{} {
			return e.CreateMockRequest(a.Ref)
		},
		"generateTypes": func(a CapabilityArgs) interface{} {
			return e.GenerateTypes(a.Ref)
		},
		"checkTypeExistence": func(a CapabilityArgs) interface{} {
			return e.CheckTypeExistence(a.Ref, a.TypeName)
		},
		"checkTypeProperty": func(a CapabilityArgs) interface{} {
			return e.CheckTypeProperty(a.Ref, a.TypeName, a.PropertyName)
		},
	}
}
