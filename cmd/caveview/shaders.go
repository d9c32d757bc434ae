package main

// Shader sources for the cave mesh viewer

// Vertex shader: transforms mesh vertices and passes world-space normals
const meshVertexShaderSource = `
#version 410 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;

uniform mat4 viewProjection;

out vec3 WorldPos;
out vec3 Normal;

void main() {
    gl_Position = viewProjection * vec4(aPos, 1.0);
    WorldPos = aPos;
    Normal = aNormal;
}
`

// Fragment shader: headlamp-style lighting with depth fog
const meshFragmentShaderSource = `
#version 410 core
in vec3 WorldPos;
in vec3 Normal;

uniform vec3 cameraPos;
uniform vec3 rockColor;

out vec4 FragColor;

void main() {
    // Light travels with the camera, like a headlamp
    vec3 lightDir = normalize(cameraPos - WorldPos);
    float diffuse = max(dot(normalize(Normal), lightDir), 0.0);

    float dist = length(cameraPos - WorldPos);
    float attenuation = 1.0 / (1.0 + 0.002 * dist * dist);

    vec3 color = rockColor * (0.15 + diffuse * attenuation);

    // Distance fog fades into cave darkness
    float fog = clamp(dist / 120.0, 0.0, 1.0);
    color = mix(color, vec3(0.0), fog);

    FragColor = vec4(color, 1.0);
}
`
