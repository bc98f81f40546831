package model

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// UnmarshalJSON tolerates metadata written before the payload was versioned.
// Blobs carrying the current version decode directly; anything else goes
// through the lenient legacy decoder.
func (m *ConversationMeta) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if version, ok := raw["version"].(float64); ok && int(version) >= MetaVersion {
		type plain ConversationMeta
		var p plain
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		*m = ConversationMeta(p)
		return nil
	}

	return m.decodeLegacy(raw)
}

// decodeLegacy reads the pre-versioned blob shape: snake_case keys, numbers
// occasionally written as strings. Decoded metadata is reported at the
// current version so it is rewritten upgraded on the next save.
func (m *ConversationMeta) decodeLegacy(raw map[string]any) error {
	var legacy struct {
		QuestionAnswers []QuestionAnswer `mapstructure:"question_answers"`
		LastQuestion    string           `mapstructure:"last_question"`
		PreferredSender string           `mapstructure:"preferred_sender"`
		Channel         string           `mapstructure:"channel"`
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &legacy,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("build legacy meta decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("decode legacy meta: %w", err)
	}

	m.Version = MetaVersion
	m.QuestionAnswers = legacy.QuestionAnswers
	m.LastQuestion = legacy.LastQuestion
	m.PreferredSender = legacy.PreferredSender
	m.Channel = Channel(legacy.Channel)
	return nil
}
