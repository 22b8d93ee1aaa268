package core

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
	celgo "github.com/google/cel-go/cel"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
)

// Expression filters see three variables: id (string), type_id (string) and
// props (map of property key to value).

// ProgramCache stores compiled filter programs keyed by engine and expression.
type ProgramCache interface {
	Get(key string) (any, bool)
	Add(key string, program any)
}

// LRUProgramCache is a bounded ProgramCache.
type LRUProgramCache struct {
	cache *lru.Cache[string, any]
}

// NewProgramCache returns an LRU cache holding at most size programs.
func NewProgramCache(size int) (*LRUProgramCache, error) {
	c, err := lru.New[string, any](size)
	if err != nil {
		return nil, fmt.Errorf("program cache: %w", err)
	}
	return &LRUProgramCache{cache: c}, nil
}

// Get implements ProgramCache.
func (c *LRUProgramCache) Get(key string) (any, bool) { return c.cache.Get(key) }

// Add implements ProgramCache.
func (c *LRUProgramCache) Add(key string, program any) { c.cache.Add(key, program) }

// Len returns the number of cached programs.
func (c *LRUProgramCache) Len() int { return c.cache.Len() }

// ExpressionOption configures an expression filter.
type ExpressionOption func(*expressionConfig)

type expressionConfig struct {
	cache  ProgramCache
	logger logrus.FieldLogger
}

// WithProgramCache shares compiled programs between filters.
func WithProgramCache(cache ProgramCache) ExpressionOption {
	return func(c *expressionConfig) { c.cache = cache }
}

// WithFilterLogger sets the logger used for evaluation failures.
func WithFilterLogger(logger logrus.FieldLogger) ExpressionOption {
	return func(c *expressionConfig) { c.logger = logger }
}

func newExpressionConfig(opts []ExpressionOption) expressionConfig {
	cfg := expressionConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = logrus.StandardLogger()
	}
	return cfg
}

func filterEnv(item *Item) map[string]any {
	props := make(map[string]any, len(item.props))
	for k, v := range item.props {
		props[k] = v
	}
	return map[string]any{
		"id":      item.ID(),
		"type_id": item.TypeID(),
		"props":   props,
	}
}

// ExprFilter admits items for which an expr-lang expression evaluates to true.
// Evaluation errors count as rejection.
type ExprFilter struct {
	expression string
	program    *exprvm.Program
	logger     logrus.FieldLogger
}

// NewExprFilter compiles expression, which must produce a boolean.
func NewExprFilter(expression string, opts ...ExpressionOption) (*ExprFilter, error) {
	if expression == "" {
		return nil, fmt.Errorf("expr filter: expression must not be empty")
	}
	cfg := newExpressionConfig(opts)
	key := "expr:" + expression
	if cfg.cache != nil {
		if cached, ok := cfg.cache.Get(key); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return &ExprFilter{expression: expression, program: program, logger: cfg.logger}, nil
			}
		}
	}
	program, err := exprlang.Compile(expression,
		exprlang.Env(map[string]any{"id": "", "type_id": "", "props": map[string]any{}}),
		exprlang.AllowUndefinedVariables(),
		exprlang.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("expr filter %q: %w", expression, err)
	}
	if cfg.cache != nil {
		cfg.cache.Add(key, program)
	}
	return &ExprFilter{expression: expression, program: program, logger: cfg.logger}, nil
}

// Expression returns the source expression.
func (f *ExprFilter) Expression() string { return f.expression }

// Allows implements Filter.
func (f *ExprFilter) Allows(item *Item) bool {
	out, err := exprlang.Run(f.program, filterEnv(item))
	if err != nil {
		f.logger.WithFields(logrus.Fields{"item_id": item.ID(), "expression": f.expression}).WithError(err).Warn("expr filter evaluation failed")
		return false
	}
	ok, _ := out.(bool)
	return ok
}

// CELFilter admits items for which a CEL expression evaluates to true.
// Evaluation errors count as rejection.
type CELFilter struct {
	expression string
	program    celgo.Program
	logger     logrus.FieldLogger
}

// NewCELFilter compiles expression, which must type-check to bool.
func NewCELFilter(expression string, opts ...ExpressionOption) (*CELFilter, error) {
	if expression == "" {
		return nil, fmt.Errorf("cel filter: expression must not be empty")
	}
	cfg := newExpressionConfig(opts)
	key := "cel:" + expression
	if cfg.cache != nil {
		if cached, ok := cfg.cache.Get(key); ok {
			if program, ok := cached.(celgo.Program); ok {
				return &CELFilter{expression: expression, program: program, logger: cfg.logger}, nil
			}
		}
	}
	env, err := celgo.NewEnv(
		celgo.Variable("id", celgo.StringType),
		celgo.Variable("type_id", celgo.StringType),
		celgo.Variable("props", celgo.MapType(celgo.StringType, celgo.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("cel filter env: %w", err)
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("cel filter %q: %w", expression, issues.Err())
	}
	if !ast.OutputType().IsExactType(celgo.BoolType) {
		return nil, fmt.Errorf("cel filter %q: result type %s is not bool", expression, ast.OutputType())
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("cel filter %q: %w", expression, err)
	}
	if cfg.cache != nil {
		cfg.cache.Add(key, program)
	}
	return &CELFilter{expression: expression, program: program, logger: cfg.logger}, nil
}

// Expression returns the source expression.
func (f *CELFilter) Expression() string { return f.expression }

// Allows implements Filter.
func (f *CELFilter) Allows(item *Item) bool {
	out, _, err := f.program.Eval(filterEnv(item))
	if err != nil {
		f.logger.WithFields(logrus.Fields{"item_id": item.ID(), "expression": f.expression}).WithError(err).Warn("cel filter evaluation failed")
		return false
	}
	ok, _ := out.Value().(bool)
	return ok
}
