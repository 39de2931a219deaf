// Package config defines the frozen configuration records consumed by the
// scheduler, memory, and sub-agent orchestrator. Every constructor validates
// eagerly so a malformed config fails at run start rather than mid-run; With-
// prefixed methods return a new value, never mutating the receiver, so a run
// that begins with a config observes that exact config for its entire
// lifetime.
package config

import (
	"net/url"
	"strings"

	"github.com/agentcore/reactor/agenterr"
	"github.com/agentcore/reactor/memory"
)

// ContextLevel selects how much of a parent's memory a spawned sub-agent
// inherits.
type ContextLevel string

const (
	ContextTaskOnly     ContextLevel = "task_only"
	ContextObservations ContextLevel = "observations"
	ContextSummary      ContextLevel = "summary"
	ContextFull         ContextLevel = "full"
)

var validContextLevels = map[ContextLevel]bool{
	ContextTaskOnly: true, ContextObservations: true, ContextSummary: true, ContextFull: true,
}

// ContextScope configures a spawn's context inheritance.
type ContextScope struct {
	Level ContextLevel
}

// NewContextScope validates level against the closed set of context levels.
func NewContextScope(level ContextLevel) (ContextScope, error) {
	if !validContextLevels[level] {
		return ContextScope{}, agenterr.Newf(agenterr.KindConfiguration, "config: unknown context scope level %q", level)
	}
	return ContextScope{Level: level}, nil
}

// MemoryConfig configures AgentMemory.RenderMessages's budget strategy.
type MemoryConfig struct {
	Strategy       memory.Strategy
	PreserveRecent int
	Budget         *int
}

var validStrategies = map[memory.Strategy]bool{
	memory.StrategyFull: true, memory.StrategyMask: true, memory.StrategySummarize: true, memory.StrategyHybrid: true,
}

// NewMemoryConfig validates strategy, preserveRecent, and budget.
func NewMemoryConfig(strategy memory.Strategy, preserveRecent int, budget *int) (MemoryConfig, error) {
	if !validStrategies[strategy] {
		return MemoryConfig{}, agenterr.Newf(agenterr.KindConfiguration, "config: unknown memory strategy %q", strategy)
	}
	if preserveRecent < 0 {
		return MemoryConfig{}, agenterr.New(agenterr.KindConfiguration, "config: preserve_recent must be >= 0")
	}
	if budget != nil && *budget <= 0 {
		return MemoryConfig{}, agenterr.New(agenterr.KindConfiguration, "config: budget must be a positive int when set")
	}
	return MemoryConfig{Strategy: strategy, PreserveRecent: preserveRecent, Budget: budget}, nil
}

// WithStrategy returns a copy of c with Strategy replaced, re-validated.
func (c MemoryConfig) WithStrategy(strategy memory.Strategy) (MemoryConfig, error) {
	return NewMemoryConfig(strategy, c.PreserveRecent, c.Budget)
}

// ToMemoryConfig adapts this frozen record to the shape
// AgentMemory.RenderMessages expects. The caller installs Summarizer
// separately: it is a runtime callback, not part of the frozen config.
func (c MemoryConfig) ToMemoryConfig() *memory.Config {
	return &memory.Config{Strategy: c.Strategy, PreserveRecent: c.PreserveRecent, Budget: c.Budget}
}

// ModelConfig describes one model endpoint.
type ModelConfig struct {
	ModelID     string
	Temperature float64
	TimeoutMS   int
	APIBase     string
	IsLocal     bool
}

// NewModelConfig validates temperature, timeout, and api_base, and detects
// whether api_base names a local endpoint.
func NewModelConfig(modelID string, temperature float64, timeoutMS int, apiBase string) (ModelConfig, error) {
	if temperature < 0 || temperature > 2 {
		return ModelConfig{}, agenterr.New(agenterr.KindConfiguration, "config: temperature must be in [0,2]")
	}
	if timeoutMS <= 0 {
		return ModelConfig{}, agenterr.New(agenterr.KindConfiguration, "config: timeout must be positive")
	}
	isLocal := false
	if apiBase != "" {
		u, err := url.Parse(apiBase)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return ModelConfig{}, agenterr.New(agenterr.KindConfiguration, "config: api_base must be http or https")
		}
		host := u.Hostname()
		isLocal = host == "localhost" || host == "127.0.0.1"
	}
	return ModelConfig{ModelID: modelID, Temperature: temperature, TimeoutMS: timeoutMS, APIBase: apiBase, IsLocal: isLocal}, nil
}

// WithTemperature returns a copy of c with Temperature replaced, re-validated.
func (c ModelConfig) WithTemperature(t float64) (ModelConfig, error) {
	return NewModelConfig(c.ModelID, t, c.TimeoutMS, c.APIBase)
}

// SpawnConfig bounds the sub-agent orchestrator's spawn operation.
type SpawnConfig struct {
	MaxChildren   int
	Enabled       bool
	AllowedModels []string
	AllowedTools  []string
}

// NewSpawnConfig validates max_children and defaults allow-lists per the
// core's contract: models default to allow-anything (empty list), tools
// default to [final_answer].
func NewSpawnConfig(maxChildren int, allowedModels, allowedTools []string) (SpawnConfig, error) {
	if maxChildren < 0 {
		return SpawnConfig{}, agenterr.New(agenterr.KindConfiguration, "config: max_children must be >= 0")
	}
	if allowedTools == nil {
		allowedTools = []string{"final_answer"}
	}
	return SpawnConfig{
		MaxChildren:   maxChildren,
		Enabled:       maxChildren > 0,
		AllowedModels: allowedModels,
		AllowedTools:  allowedTools,
	}, nil
}

// AllowsModel reports whether modelID may be used by a spawned child. An
// empty AllowedModels list means allow-anything.
func (c SpawnConfig) AllowsModel(modelID string) bool {
	if len(c.AllowedModels) == 0 {
		return true
	}
	return contains(c.AllowedModels, modelID)
}

// AllowsTool reports whether toolName may be used by a spawned child.
func (c SpawnConfig) AllowsTool(toolName string) bool {
	return contains(c.AllowedTools, toolName)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// AgentConfig is the top-level frozen record passed into a scheduler run.
type AgentConfig struct {
	MaxSteps           int
	CustomInstructions string
	AuthorizedImports  []string
	Memory             MemoryConfig
	Model              ModelConfig
	Spawn              SpawnConfig
	PlanningInterval   int
}

// NewAgentConfig validates max_steps and custom_instructions length; Memory,
// Model, and Spawn must already be valid (constructed via their own
// constructors).
func NewAgentConfig(maxSteps int, customInstructions string, authorizedImports []string, mem MemoryConfig, model ModelConfig, spawn SpawnConfig, planningInterval int) (AgentConfig, error) {
	if maxSteps < 1 || maxSteps > 1000 {
		return AgentConfig{}, agenterr.New(agenterr.KindConfiguration, "config: max_steps must be in [1,1000]")
	}
	if len(customInstructions) > 10_000 {
		return AgentConfig{}, agenterr.New(agenterr.KindConfiguration, "config: custom_instructions must be <= 10000 characters")
	}
	if planningInterval < 0 {
		return AgentConfig{}, agenterr.New(agenterr.KindConfiguration, "config: planning_interval must be >= 0")
	}
	imports := make([]string, len(authorizedImports))
	copy(imports, authorizedImports)
	return AgentConfig{
		MaxSteps:           maxSteps,
		CustomInstructions: strings.TrimSpace(customInstructions),
		AuthorizedImports:  imports,
		Memory:             mem,
		Model:              model,
		Spawn:              spawn,
		PlanningInterval:   planningInterval,
	}, nil
}

// WithMaxSteps returns a copy of c with MaxSteps replaced, re-validated.
func (c AgentConfig) WithMaxSteps(n int) (AgentConfig, error) {
	return NewAgentConfig(n, c.CustomInstructions, c.AuthorizedImports, c.Memory, c.Model, c.Spawn, c.PlanningInterval)
}

// WithCustomInstructions returns a copy of c with CustomInstructions
// replaced, re-validated.
func (c AgentConfig) WithCustomInstructions(text string) (AgentConfig, error) {
	return NewAgentConfig(c.MaxSteps, text, c.AuthorizedImports, c.Memory, c.Model, c.Spawn, c.PlanningInterval)
}

// PlansEveryStep reports whether PlanningInterval=0 should be read as "plan
// before every step" rather than "planning disabled". See DESIGN.md's
// resolution of this open question: 0 means plan every step, since a
// scheduler with planning unconditionally disabled would never emit a
// PlanningStep at all, which callers can already achieve by omitting the
// planning phase entirely.
func (c AgentConfig) PlansEveryStep() bool {
	return c.PlanningInterval == 0
}
