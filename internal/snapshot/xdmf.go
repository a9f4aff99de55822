package snapshot

import (
	"os"
	"path/filepath"
	"text/template"
)

// xdmfTemplate renders the running collection of every snapshot written so
// far into a single XDMF descriptor, the way a ParaView/VisIt time series is
// normally exposed alongside a raw HDF5 dataset.
var xdmfTemplate = template.Must(template.New("xdmf").Parse(`<?xml version="1.0" ?>
<Xdmf Version="3.0">
  <Domain>
    <Grid Name="snapshots" GridType="Collection" CollectionType="Temporal">
{{- range .Entries }}
      <Grid Name="step-{{ .Step }}" GridType="Uniform">
        <Topology TopologyType="3DCoRectMesh" Dimensions="{{ $.Nz }} {{ $.Ny }} {{ $.Nx }}"/>
        <Geometry GeometryType="ORIGIN_DXDYDZ">
          <DataItem Format="XML" Dimensions="3">0 0 0</DataItem>
          <DataItem Format="XML" Dimensions="3">1 1 1</DataItem>
        </Geometry>
        <Attribute Name="rho" AttributeType="Scalar" Center="Node">
          <DataItem Format="HDF" Dimensions="{{ $.Nz }} {{ $.Ny }} {{ $.Nx }}">{{ .File }}:/rho</DataItem>
        </Attribute>
        <Attribute Name="u" AttributeType="Scalar" Center="Node">
          <DataItem Format="HDF" Dimensions="{{ $.Nz }} {{ $.Ny }} {{ $.Nx }}">{{ .File }}:/u</DataItem>
        </Attribute>
        <Attribute Name="v" AttributeType="Scalar" Center="Node">
          <DataItem Format="HDF" Dimensions="{{ $.Nz }} {{ $.Ny }} {{ $.Nx }}">{{ .File }}:/v</DataItem>
        </Attribute>
        <Attribute Name="w" AttributeType="Scalar" Center="Node">
          <DataItem Format="HDF" Dimensions="{{ $.Nz }} {{ $.Ny }} {{ $.Nx }}">{{ .File }}:/w</DataItem>
        </Attribute>
      </Grid>
{{- end }}
    </Grid>
  </Domain>
</Xdmf>
`))

type xdmfEntry struct {
	Step int
	File string
}

type xdmfData struct {
	Nx, Ny, Nz int
	Entries    []xdmfEntry
}

// writeXDMF regenerates <base>.xdmf from the series recorded so far. Write
// calls this only from its rank-0 branch, after every rank's hyperslab
// write has cleared the second barrier, so there is exactly one writer of
// this file per step and it always describes a fully written snapshot.
func (w *Writer) writeXDMF() error {
	path := filepath.Join(w.dir, w.base+".xdmf")

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	data := xdmfData{Nx: w.global.Nx, Ny: w.global.Ny, Nz: w.global.Nz}
	for _, e := range w.series {
		data.Entries = append(data.Entries, xdmfEntry{Step: e.step, File: e.file})
	}

	return xdmfTemplate.Execute(f, data)
}
