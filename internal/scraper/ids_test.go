package scraper

import "testing"

var extractTests = []struct {
	url        string
	wantShisya string
	wantDanchi string
	wantErr    error
}{
	{
		url:        "https://www.ur-net.go.jp/chintai/kanto/tokyo/20_7140.html",
		wantShisya: "20",
		wantDanchi: "7140",
	},
	{
		url:        "https://www.ur-net.go.jp/chintai/kansai/osaka/80_2330.html?from=top#rooms",
		wantShisya: "80",
		wantDanchi: "2330",
	},
	{
		url:        "http://example.com/00_0000.html",
		wantShisya: "00",
		wantDanchi: "0000",
	},
	{url: "https://example.com/foo.html", wantErr: ErrInvalidFormat},
	{url: "https://www.ur-net.go.jp/chintai/kanto/tokyo/20_7140.htm", wantErr: ErrInvalidFormat},
	{url: "https://www.ur-net.go.jp/chintai/kanto/tokyo/20-7140.html", wantErr: ErrInvalidFormat},
	{url: "https://www.ur-net.go.jp/chintai/kanto/tokyo/20_7140.html/", wantErr: ErrInvalidFormat},
	{url: "https://www.ur-net.go.jp/chintai/kanto/tokyo/a20_7140.html", wantErr: ErrInvalidFormat},
	{url: "/chintai/kanto/tokyo/20_7140.html", wantErr: ErrInvalidFormat},
	{url: "https://www.ur-net.go.jp/chintai/kanto/tokyo/20_7140%2Ehtml", wantErr: ErrInvalidFormat},
	{url: "https://www.ur-net.go.jp/chintai/kanto/tokyo/%32%30_7140.html", wantErr: ErrInvalidFormat},
	{url: "not a url", wantErr: ErrInvalidFormat},
	{url: "", wantErr: ErrInvalidFormat},
}

func TestExtractPropertyIDs(t *testing.T) {
	for _, test := range extractTests {
		shisya, danchi, err := ExtractPropertyIDs(test.url)
		if err != test.wantErr {
			t.Errorf("unexpected error for %q: got:%v want:%v", test.url, err, test.wantErr)
			continue
		}
		if err != nil {
			continue
		}
		if shisya != test.wantShisya || danchi != test.wantDanchi {
			t.Errorf("unexpected ids for %q: got:%s_%s want:%s_%s", test.url, shisya, danchi, test.wantShisya, test.wantDanchi)
		}
	}
}
