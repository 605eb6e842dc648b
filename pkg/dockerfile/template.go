package dockerfile

// GoVersion is the toolchain installed in the builder stage.
const GoVersion = "1.22.5"

// Empty dependency lists drop their install line entirely, apt-get with no
// package names is not something to rely on.
const ubuntuTemplate = `FROM {{ .BaseImage }} AS builder

RUN apt-get update
RUN apt-get install -yq wget ca-certificates git
RUN wget -q https://go.dev/dl/go{{ .GoVersion }}.linux-amd64.tar.gz -O /tmp/go.tar.gz \
    && tar -C /usr/local -xzf /tmp/go.tar.gz \
    && rm /tmp/go.tar.gz
ENV PATH=$PATH:/usr/local/go/bin
{{ if .BuildDeps }}RUN apt-get install -yq {{ .BuildDeps }}
{{ end }}
RUN mkdir /work /artifacts
WORKDIR /work
COPY go.mod go.sum* /work/
RUN --mount=type=cache,target=/root/go/pkg/mod \
    go mod download
COPY . /work/
RUN --mount=type=cache,target=/root/go/pkg/mod \
    --mount=type=cache,target=/root/.cache/go-build \
    go build -o /artifacts/{{ .Artifact }} .

FROM {{ .BaseImage }} AS runner
RUN apt-get update
{{ if .RuntimeDeps }}RUN apt-get install -yq {{ .RuntimeDeps }}
{{ end -}}
LABEL org.opencontainers.image.ref.name={{ .TargetImage | quote }}
COPY --from=builder /artifacts/{{ .Artifact }} /usr/bin/{{ .Artifact }}

ENTRYPOINT [{{ printf "/usr/bin/%s" .Artifact | quote }}]
`
