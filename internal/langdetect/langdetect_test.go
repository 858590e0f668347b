package langdetect

import "testing"

func TestDetect(t *testing.T) {
	cases := []struct {
		sample string
		want   string
	}{
		{"The quick brown fox jumps over the lazy dog repeatedly.", "en"},
		{"안녕하세요 저는 한국어를 사용합니다 반갑습니다", "ko"},
		{"这是一个中文的示例文本用于测试语言检测功能", "zh"},
		{"Привет меня зовут пример текста на русском языке", "ru"},
	}
	for _, c := range cases {
		got, conf := Detect(c.sample)
		if got != c.want {
			t.Errorf("Detect(%q) = %q (conf %.2f), want %q", c.sample, got, conf, c.want)
		}
	}
}

func TestDetectEmpty(t *testing.T) {
	lang, conf := Detect("")
	if lang != "en" || conf != 0 {
		t.Errorf("Detect(\"\") = (%q, %v), want (en, 0)", lang, conf)
	}
}
