package main

import (
	"flag"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"cavernkit/internal/logger"
	"cavernkit/pkg/cavegen"
	"cavernkit/pkg/config"
)

func init() {
	// GLFW requires the program to be running on the main thread
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Println(err)
	}

	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Starting cave viewer...")

	if err := cfg.Chunks.Validate(); err != nil {
		log.Fatalf("Invalid chunk configuration: %v", err)
	}
	if cfg.Generation.Seed == 0 {
		cfg.Generation.Seed = time.Now().UnixNano()
	}

	bounds := cavegen.Bounds{
		Min: cavegen.Vec3{X: cfg.Chunks.BoundsMin[0], Y: cfg.Chunks.BoundsMin[1], Z: cfg.Chunks.BoundsMin[2]},
		Max: cavegen.Vec3{X: cfg.Chunks.BoundsMax[0], Y: cfg.Chunks.BoundsMax[1], Z: cfg.Chunks.BoundsMax[2]},
	}

	gen, err := cavegen.NewGenerator(&cfg.Generation, cfg.Layers, bounds, nil)
	if err != nil {
		log.Fatalf("Failed to initialize generator: %v", err)
	}
	log.Infof("Placed %d chambers, routed %d tunnels", len(gen.Network.Chambers), len(gen.Paths))

	mesh, err := regionMesh(gen, cfg.Chunks)
	if err != nil {
		log.Fatalf("Failed to build region mesh: %v", err)
	}
	log.Infof("Region mesh ready: %d triangles", mesh.TriangleCount())

	if err := run(cfg, gen, mesh, log); err != nil {
		log.Fatalf("Viewer failed: %v", err)
	}
}

// regionMesh extracts and merges the meshes of every chunk in the
// configured region.
func regionMesh(gen *cavegen.Generator, chunks config.ChunkConfig) (*cavegen.Mesh, error) {
	mesh := &cavegen.Mesh{}
	rmin, rmax := chunks.RegionMin, chunks.RegionMax
	for cz := rmin[2]; cz <= rmax[2]; cz++ {
		for cy := rmin[1]; cy <= rmax[1]; cy++ {
			for cx := rmin[0]; cx <= rmax[0]; cx++ {
				part, err := gen.ChunkMesh([3]int{cx, cy, cz}, chunks.Size, chunks.VoxelSize, chunks.IsoLevel, chunks.LODStep)
				if err != nil {
					return nil, err
				}
				mesh.Append(part)
			}
		}
	}
	return mesh, nil
}

func run(cfg *config.Config, gen *cavegen.Generator, mesh *cavegen.Mesh, log *logger.Logger) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %v", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(cfg.Viewer.Width, cfg.Viewer.Height, "caveview", nil, nil)
	if err != nil {
		return fmt.Errorf("failed to create window: %v", err)
	}
	window.MakeContextCurrent()
	if cfg.Viewer.VSync {
		glfw.SwapInterval(1)
	}

	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to initialize OpenGL: %v", err)
	}
	log.Infof("OpenGL %s", gl.GoStr(gl.GetString(gl.VERSION)))

	program, err := createShaderProgram(meshVertexShaderSource, meshFragmentShaderSource)
	if err != nil {
		return err
	}
	defer gl.DeleteProgram(program)

	vao, count := uploadMesh(mesh)
	defer gl.DeleteVertexArrays(1, &vao)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.ClearColor(0.0, 0.0, 0.0, 1.0)

	vpLocation := gl.GetUniformLocation(program, gl.Str("viewProjection\x00"))
	cameraLocation := gl.GetUniformLocation(program, gl.Str("cameraPos\x00"))
	rockLocation := gl.GetUniformLocation(program, gl.Str("rockColor\x00"))

	// Spawn inside the first chamber if there is one
	start := cavegen.Vec3{}
	if len(gen.Network.Chambers) > 0 {
		start = gen.Network.Chambers[0].Center
	}
	cam := newCamera(start)

	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	lastX, lastY := window.GetCursorPos()
	window.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		cam.rotate(x-lastX, y-lastY)
		lastX, lastY = x, y
	})
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})

	axis := func(neg, pos glfw.Key) float64 {
		v := 0.0
		if window.GetKey(neg) == glfw.Press {
			v -= 1
		}
		if window.GetKey(pos) == glfw.Press {
			v += 1
		}
		return v
	}

	lastFrame := time.Now()
	for !window.ShouldClose() {
		now := time.Now()
		dt := now.Sub(lastFrame).Seconds()
		lastFrame = now

		cam.move(axis(glfw.KeyS, glfw.KeyW), axis(glfw.KeyA, glfw.KeyD), axis(glfw.KeyLeftShift, glfw.KeySpace), dt)

		width, height := window.GetFramebufferSize()
		gl.Viewport(0, 0, int32(width), int32(height))
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

		gl.UseProgram(program)
		vp := cam.viewProjection(cfg.Viewer.FOV, float64(width)/float64(height))
		gl.UniformMatrix4fv(vpLocation, 1, false, &vp[0])
		gl.Uniform3f(cameraLocation, float32(cam.position.X), float32(cam.position.Y), float32(cam.position.Z))
		gl.Uniform3f(rockLocation, 0.55, 0.47, 0.40)

		gl.BindVertexArray(vao)
		gl.DrawArrays(gl.TRIANGLES, 0, count)

		window.SwapBuffers()
		glfw.PollEvents()
	}

	return nil
}

// uploadMesh packs interleaved position+normal data into a VAO. The mesh
// already duplicates vertices per triangle, so no element buffer is needed.
func uploadMesh(mesh *cavegen.Mesh) (uint32, int32) {
	data := make([]float32, 0, len(mesh.Indices)*6)
	for _, idx := range mesh.Indices {
		v := mesh.Vertices[idx]
		n := mesh.Normals[idx]
		data = append(data,
			float32(v.X), float32(v.Y), float32(v.Z),
			float32(n.X), float32(n.Y), float32(n.Z))
	}

	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	if len(data) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	}

	stride := int32(6 * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)

	return vao, int32(len(mesh.Indices))
}

// createShaderProgram compiles and links a shader program from source
func createShaderProgram(vertexSource, fragmentSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}

	fragmentShader, err := compileShader(fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(infoLog))

		gl.DeleteProgram(program)
		gl.DeleteShader(vertexShader)
		gl.DeleteShader(fragmentShader)

		return 0, fmt.Errorf("shader program linking failed: %v", infoLog)
	}

	gl.DetachShader(program, vertexShader)
	gl.DetachShader(program, fragmentShader)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	return program, nil
}

// compileShader compiles a shader from source
func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(infoLog))

		gl.DeleteShader(shader)
		return 0, fmt.Errorf("shader compilation failed: %v", infoLog)
	}

	return shader, nil
}
