package ai

import (
	"testing"
)

func TestExtractJSONPlain(t *testing.T) {
	raw := `{"title": "Proposal", "tax": 0}`
	got, ok := ExtractJSON(raw)
	if !ok {
		t.Fatal("ожидали успешное извлечение JSON")
	}
	if got != raw {
		t.Fatalf("ожидали %q, получили %q", raw, got)
	}
}

func TestExtractJSONCodeFence(t *testing.T) {
	raw := "```json\n{\"title\": \"Proposal\"}\n```"
	got, ok := ExtractJSON(raw)
	if !ok {
		t.Fatal("ожидали успешное извлечение JSON из markdown блока")
	}
	if got != `{"title": "Proposal"}` {
		t.Fatalf("неожиданный результат: %q", got)
	}
}

func TestExtractJSONSurroundingProse(t *testing.T) {
	raw := "Here is your proposal:\n{\"title\": \"X\"}\nLet me know!"
	got, ok := ExtractJSON(raw)
	if !ok {
		t.Fatal("ожидали успешное извлечение JSON из текста с пояснениями")
	}
	if got != `{"title": "X"}` {
		t.Fatalf("неожиданный результат: %q", got)
	}
}

func TestExtractJSONInvalid(t *testing.T) {
	for _, raw := range []string{"", "no json here", "{broken"} {
		if _, ok := ExtractJSON(raw); ok {
			t.Fatalf("не ожидали извлечения JSON из %q", raw)
		}
	}
}

func TestConfigured(t *testing.T) {
	if NewClient("http://localhost:9000", "", "").Configured() {
		t.Fatal("клиент без ключа не должен считаться сконфигурированным")
	}
	if !NewClient("http://localhost:9000", "sk-test", "").Configured() {
		t.Fatal("клиент с ключом должен считаться сконфигурированным")
	}
}
