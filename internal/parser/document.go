// Package parser 解析公示页面: 链接发现、楼栋名称与房屋资料表格提取
package parser

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/RecoveryAshes/HouseSpider/internal/utils"
)

// Page 已解析的页面
type Page struct {
	URL *url.URL
	Doc *goquery.Document
}

// Parse 解析页面内容, pageURL 用于解析相对链接
func Parse(pageURL string, data []byte) (*Page, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("无效的页面URL [%s]: %w", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(toUTF8(data)))
	if err != nil {
		return nil, fmt.Errorf("解析HTML失败 [%s]: %w", pageURL, err)
	}

	return &Page{URL: base, Doc: doc}, nil
}

// toUTF8 非UTF-8内容按 BOM / meta charset 转码
// 页面未声明编码时按GB18030(GBK的超集)处理, 缓存中保存的是未转码的原始字节
func toUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	enc, name, certain := charset.DetermineEncoding(data, "text/html")
	if !certain && name == "windows-1252" {
		enc, name = simplifiedchinese.GB18030, "gb18030"
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		utils.Warnf("页面转码失败 (编码=%s): %v", name, err)
		return data
	}
	utils.Debugf("页面已从 %s 转码为 UTF-8", name)
	return decoded
}

// resolve 将href解析为绝对URL
func (p *Page) resolve(href string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", err
	}
	return p.URL.ResolveReference(ref).String(), nil
}

// findTextNode 按文档顺序查找第一个包含substr的文本节点, 跳过script/style
func findTextNode(root *html.Node, substr string) *html.Node {
	var found *html.Node
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return false
		}
		if n.Type == html.TextNode && strings.Contains(n.Data, substr) {
			found = n
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}

	walk(root)
	return found
}

// closestAncestor 返回满足match的最近祖先元素
func closestAncestor(n *html.Node, match func(*html.Node) bool) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && match(p) {
			return p
		}
	}
	return nil
}

// attr 读取元素属性
func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// textContent 拼接节点下所有文本
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// elementChildren 返回元素子节点, 忽略文本与注释
func elementChildren(n *html.Node) []*html.Node {
	var children []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			children = append(children, c)
		}
	}
	return children
}
