package markup_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/eak1mov/go-libtmx/internal/markup"
	"github.com/stretchr/testify/require"
)

const document = `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" width="2">
 <layer name="a &amp; b"/>
 <objectgroup name="o"/>
 <layer name="c">
  <data encoding="csv">1,2</data>
 </layer>
</map>`

func TestDecodeOrder(t *testing.T) {
	root, err := markup.Decode(strings.NewReader(document))
	require.NoError(t, err)

	require.Equal(t, "map", root.Name())
	require.Len(t, root.Attrs, 2)
	require.Equal(t, "version", root.Attrs[0].Name.Local)

	names := []string{}
	for _, c := range root.Children {
		names = append(names, c.Name())
	}
	require.Equal(t, []string{"layer", "objectgroup", "layer"}, names)

	value, ok := root.Children[0].Attr("name")
	require.True(t, ok)
	require.Equal(t, "a & b", value)

	_, ok = root.Children[0].Attr("missing")
	require.False(t, ok)

	data := root.Children[2].Child("data")
	require.NotNil(t, data)
	require.Equal(t, "1,2", data.Text)
	require.Nil(t, root.Child("tileset"))
}

func TestEncodeDecode(t *testing.T) {
	root := markup.New("map").SetAttr("version", "1.10").SetAttr("width", "2")
	root.SetAttr("width", "3")
	data := markup.New("data").SetAttr("encoding", "csv")
	data.Text = "\n1,2,\n3,4\n"
	root.Append(markup.New("layer").SetAttr("name", "<ground>").Append(data))

	var buffer bytes.Buffer
	require.NoError(t, markup.Encode(&buffer, root))
	require.True(t, strings.HasPrefix(buffer.String(), "<?xml"))
	require.Contains(t, buffer.String(), `name="&lt;ground&gt;"`)

	decoded, err := markup.Decode(&buffer)
	require.NoError(t, err)

	width, _ := decoded.Attr("width")
	require.Equal(t, "3", width)
	layer := decoded.Child("layer")
	require.NotNil(t, layer)
	name, _ := layer.Attr("name")
	require.Equal(t, "<ground>", name)
	require.Equal(t, "\n1,2,\n3,4\n", layer.Child("data").Text)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := markup.Decode(strings.NewReader("<map><layer></map>"))
	require.Error(t, err)
}
