package text

import (
	"reflect"
	"testing"
)

func TestNormalizeLanguageCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ko-KR", "ko"},
		{"vi_VN", "vi"},
		{"VI", "vi"},
		{" ko ", "ko"},
		{"Korean", "ko"},
		{"vietnamese", "vi"},
		{"en", "en"},
		{"en-US", "en"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeLanguageCode(tt.in); got != tt.want {
			t.Errorf("NormalizeLanguageCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsSupported(t *testing.T) {
	for _, code := range []string{"vi", "ko", "ko-KR", "Vietnamese"} {
		if !IsSupported(code) {
			t.Errorf("IsSupported(%q) = false, want true", code)
		}
	}
	for _, code := range []string{"en", "ja", "", "k"} {
		if IsSupported(code) {
			t.Errorf("IsSupported(%q) = true, want false", code)
		}
	}
}

func TestOtherLanguage(t *testing.T) {
	tests := map[string]string{"vi": "ko", "ko": "vi", "ko-KR": "vi", "en": ""}
	for in, want := range tests {
		if got := OtherLanguage(in); got != want {
			t.Errorf("OtherLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetLanguageName(t *testing.T) {
	if got := GetLanguageName("ko"); got != "Korean" {
		t.Errorf("GetLanguageName(ko) = %q", got)
	}
	if got := GetLanguageName("xx"); got != "xx" {
		t.Errorf("GetLanguageName(xx) = %q", got)
	}
}

func TestSupportedLanguageCodes(t *testing.T) {
	if got := SupportedLanguageCodes(); !reflect.DeepEqual(got, []string{"ko", "vi"}) {
		t.Errorf("SupportedLanguageCodes() = %v", got)
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single", "Hello world.", []string{"Hello world."}},
		{"two", "Xin chào. Bạn khỏe không?", []string{"Xin chào.", "Bạn khỏe không?"}},
		{"korean", "안녕하세요. 반갑습니다!  감사합니다", []string{"안녕하세요.", "반갑습니다!", "감사합니다"}},
		{"no space after dot", "Version 2.5 is out.", []string{"Version 2.5 is out."}},
		{"ellipsis and quote", `He said "wait..." Then left.`, []string{`He said "wait..."`, "Then left."}},
		{"line breaks", "first line\nsecond line", []string{"first line", "second line"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitSentences(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitSentences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitByDelimiter(t *testing.T) {
	got := SplitByDelimiter(" a |||SENTENCE||| b|||SENTENCE|||  ", "|||SENTENCE|||")
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("SplitByDelimiter = %q", got)
	}
}

func TestPreprocess(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  um  hello   there.. ", "hello there."},
		{"음 그래서 갑니다!!", "그래서 갑니다!"},
		{"그 사람은 왔어요", "그 사람은 왔어요"},
		{"ờ thì chúng ta đi nhé,,", "thì chúng ta đi nhé,"},
		{"why?? really...", "why? really."},
	}
	for _, tt := range tests {
		if got := Preprocess(tt.in); got != tt.want {
			t.Errorf("Preprocess(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPostprocess(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"- xin chào  bạn", "Xin chào bạn"},
		{`"안녕하세요"`, "안녕하세요"},
		{"* 감사합니다", "감사합니다"},
		{"  ơn trời  ", "Ơn trời"},
		{"“hello”", "Hello"},
	}
	for _, tt := range tests {
		if got := Postprocess(tt.in); got != tt.want {
			t.Errorf("Postprocess(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
