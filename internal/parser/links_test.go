package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const projectPageHTML = `<html><body>
<table>
  <tr><td><a href="/eportal/ui?pageId=411612&systemId=2&categoryId=1&salePermitId=5510&buildingId=101">1号楼</a></td></tr>
  <tr><td><a href="http://other.host/eportal/ui?pageId=411612&systemId=2&categoryId=1&salePermitId=5510&buildingId=102">2号楼</a></td></tr>
  <tr><td><a href="/eportal/ui?pageId=411612&systemId=2&categoryId=1&salePermitId=5510&buildingId=101">1号楼(重复)</a></td></tr>
  <tr><td><area href="/eportal/ui?pageId=411612&systemId=2&categoryId=1&salePermitId=5510&buildingId=103"></td></tr>
  <tr><td><a href="/eportal/ui?pageId=1&projectID=6952217">项目信息</a></td></tr>
</table>
</body></html>`

func TestFindLinks_DocumentOrderAndResolution(t *testing.T) {
	page, err := Parse("http://bjjs.zjw.beijing.gov.cn/eportal/ui?pageId=320794", []byte(projectPageHTML))
	require.NoError(t, err)

	links := page.FindLinks(BuildingLinkPattern)
	require.Len(t, links, 3)

	require.Equal(t, "http://bjjs.zjw.beijing.gov.cn/eportal/ui?pageId=411612&systemId=2&categoryId=1&salePermitId=5510&buildingId=101", links[0].URL)
	require.Equal(t, "1号楼", links[0].Text)
	require.Equal(t, "http://other.host/eportal/ui?pageId=411612&systemId=2&categoryId=1&salePermitId=5510&buildingId=102", links[1].URL)
	require.Contains(t, links[2].URL, "buildingId=103")
}

func TestFindLinks_NoMatch(t *testing.T) {
	page, err := Parse("http://host/", []byte(`<html><body><a href="/x">x</a></body></html>`))
	require.NoError(t, err)
	require.Empty(t, page.FindLinks(RoomLinkPattern))
}

func TestFindLandmarkLink(t *testing.T) {
	t.Run("存在查看更多链接", func(t *testing.T) {
		html := `<html><body>
<script>var s = "查看更多>>";</script>
<div><a href="/eportal/ui?pageId=320833&projectID=6952217"><span>查看更多&gt;&gt;</span></a></div>
</body></html>`
		page, err := Parse("http://host/eportal/ui?pageId=320794", []byte(html))
		require.NoError(t, err)

		link, ok, err := page.FindLandmarkLink(MoreLinkLandmark)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "http://host/eportal/ui?pageId=320833&projectID=6952217", link)
	})

	t.Run("不存在标志文本", func(t *testing.T) {
		page, err := Parse("http://host/", []byte(`<html><body><a href="/a">更多</a></body></html>`))
		require.NoError(t, err)

		_, ok, err := page.FindLandmarkLink(MoreLinkLandmark)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("标志文本不在链接内", func(t *testing.T) {
		page, err := Parse("http://host/", []byte(`<html><body><p>查看更多&gt;&gt;</p></body></html>`))
		require.NoError(t, err)

		_, ok, err := page.FindLandmarkLink(MoreLinkLandmark)
		require.True(t, ok)
		require.Error(t, err)
	})
}

func TestBuildingName(t *testing.T) {
	t.Run("取第一个词", func(t *testing.T) {
		html := `<html><body><span>无关</span><span>3号楼　楼盘表</span><span>4号楼 楼盘表</span></body></html>`
		page, err := Parse("http://host/", []byte(html))
		require.NoError(t, err)

		name, err := page.BuildingName()
		require.NoError(t, err)
		require.Equal(t, "3号楼", name)
	})

	t.Run("缺少楼盘表标题", func(t *testing.T) {
		page, err := Parse("http://host/", []byte(`<html><body><span>楼栋</span></body></html>`))
		require.NoError(t, err)

		_, err = page.BuildingName()
		require.Error(t, err)
	})
}
