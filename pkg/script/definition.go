package script

import (
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Definition is a parsed flow file.
type Definition struct {
	Name        string    `mapstructure:"name"`
	Description string    `mapstructure:"description"`
	Steps       []StepDef `mapstructure:"steps"`
}

// Effects change board values. Set runs before Add.
type Effects struct {
	Set map[string]float64 `mapstructure:"set"`
	Add map[string]float64 `mapstructure:"add"`
}

// Empty reports whether the effects do nothing.
func (e Effects) Empty() bool {
	return len(e.Set) == 0 && len(e.Add) == 0
}

// DelayedDef is a note or effect applied some time after a step is entered.
type DelayedDef struct {
	After   time.Duration `mapstructure:"after"`
	Note    string        `mapstructure:"note"`
	Effects `mapstructure:",squash"`
}

// ScreenDef is the part of a step that describes what it shows and does.
// Group members are plain ScreenDefs.
type ScreenDef struct {
	Content     string              `mapstructure:"content"`
	Effects     `mapstructure:",squash"`
	Undo        *Effects            `mapstructure:"undo"`
	Reapply     *bool               `mapstructure:"reapply"`
	Back        domain.BackBehavior `mapstructure:"back"`
	AutoAdvance time.Duration       `mapstructure:"auto_advance"`
	Delayed     []DelayedDef        `mapstructure:"delayed"`
}

// StepDef is a single entry of the steps list.
type StepDef struct {
	ID        string `mapstructure:"id"`
	ScreenDef `mapstructure:",squash"`
	Group     []ScreenDef `mapstructure:"group"`

	JumpTo      string `mapstructure:"jump_to"`
	When        string `mapstructure:"when"`
	LoopWhile   string `mapstructure:"loop_while"`
	RepeatWhile string `mapstructure:"repeat_while"`
}

// Load reads and parses a flow file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flow: %w", err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Parse decodes a flow from YAML. It rejects unknown keys but does not
// validate the flow; call Validate or Compile for that.
func Parse(data []byte) (*Definition, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse flow yaml: %w", err)
	}

	var def Definition
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			numberToDurationHook,
			mapstructure.StringToTimeDurationHookFunc(),
			stringToBackBehaviorHook,
		),
		ErrorUnused: true,
		Result:      &def,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode flow: %w", err)
	}
	return &def, nil
}

var (
	backBehaviorType = reflect.TypeOf(domain.Unapply)
	durationType     = reflect.TypeOf(time.Duration(0))
)

// stringToBackBehaviorHook accepts only the textual behaviour names.
func stringToBackBehaviorHook(from, to reflect.Type, data any) (any, error) {
	if to != backBehaviorType {
		return data, nil
	}
	if from.Kind() != reflect.String {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnknownBackBehavior, data)
	}
	return domain.ParseBackBehavior(data.(string))
}

// numberToDurationHook rejects bare numbers, which would otherwise decode as
// nanoseconds.
func numberToDurationHook(from, to reflect.Type, data any) (any, error) {
	if to != durationType {
		return data, nil
	}
	switch from.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return nil, fmt.Errorf("%w: %v", errMissingUnit, data)
	}
	return data, nil
}
