package room

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	repo "github.com/renderroom/server/internal/repository/room"
)

func testMembers(n int) []repo.Member {
	members := make([]repo.Member, n)
	for i := range members {
		members[i] = repo.Member{Id: fmt.Sprintf("client_%d", i), Order: i}
	}
	return members
}

func testFile(name string, start, end int) repo.BlenderFile {
	return repo.BlenderFile{
		FileName: name,
		RenderSettings: repo.RenderSettings{
			StartFrame: start,
			EndFrame:   end,
		},
	}
}

func TestPartitionTasksThreeMembersFiftyFrames(t *testing.T) {
	tasks := partitionTasks("123456", testMembers(3), []repo.BlenderFile{testFile("scene.blend", 1, 50)})

	require.Len(t, tasks, 5)

	expected := []struct {
		start, end int
		client     string
	}{
		{1, 10, "client_0"},
		{11, 20, "client_1"},
		{21, 30, "client_2"},
		{31, 40, "client_0"},
		{41, 50, "client_1"},
	}
	for i, e := range expected {
		assert.Equal(t, e.start, tasks[i].StartFrame, "task %d start frame", i)
		assert.Equal(t, e.end, tasks[i].EndFrame, "task %d end frame", i)
		assert.Equal(t, e.client, tasks[i].Client, "task %d client", i)
		assert.Equal(t, repo.TaskStatusTriggered, tasks[i].Status, "task %d status", i)
		assert.Equal(t, fmt.Sprintf("123456_scene.blend_%d", e.start), tasks[i].Id, "task %d id", i)
	}
}

func TestPartitionTasksCoversEveryFrameExactlyOnce(t *testing.T) {
	cases := []struct {
		start, end int
	}{
		{1, 1},
		{1, 9},
		{1, 10},
		{1, 11},
		{5, 104},
		{17, 17},
		{250, 263},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d-%d", tc.start, tc.end), func(t *testing.T) {
			tasks := partitionTasks("r", testMembers(2), []repo.BlenderFile{testFile("a.blend", tc.start, tc.end)})

			total := tc.end - tc.start + 1
			wantTasks := (total + framesPerTask - 1) / framesPerTask
			require.Len(t, tasks, wantTasks)

			covered := make(map[int]int)
			for i, task := range tasks {
				assert.LessOrEqual(t, task.StartFrame, task.EndFrame)
				if i > 0 {
					assert.Equal(t, tasks[i-1].EndFrame+1, task.StartFrame, "tasks must be contiguous")
				}
				for f := task.StartFrame; f <= task.EndFrame; f++ {
					covered[f]++
				}
			}

			assert.Len(t, covered, total)
			for f := tc.start; f <= tc.end; f++ {
				assert.Equal(t, 1, covered[f], "frame %d must be covered exactly once", f)
			}
		})
	}
}

func TestPartitionTasksAssignmentIsBalanced(t *testing.T) {
	members := testMembers(3)
	tasks := partitionTasks("r", members, []repo.BlenderFile{testFile("a.blend", 1, 100)})

	counts := make(map[string]int)
	for _, task := range tasks {
		counts[task.Client]++
	}

	minCount, maxCount := len(tasks), 0
	for _, member := range members {
		if counts[member.Id] < minCount {
			minCount = counts[member.Id]
		}
		if counts[member.Id] > maxCount {
			maxCount = counts[member.Id]
		}
	}

	assert.LessOrEqual(t, maxCount-minCount, 1, "task counts must differ by at most 1")
}

func TestPartitionTasksCounterSharedAcrossFiles(t *testing.T) {
	files := []repo.BlenderFile{
		testFile("a.blend", 1, 25), // 3 tasks: client_0, client_1, client_0
		testFile("b.blend", 1, 20), // continues: client_1, client_0
	}

	tasks := partitionTasks("r", testMembers(2), files)
	require.Len(t, tasks, 5)

	wantClients := []string{"client_0", "client_1", "client_0", "client_1", "client_0"}
	for i, want := range wantClients {
		assert.Equal(t, want, tasks[i].Client, "task %d client", i)
	}

	// the counter must not reset at the file boundary
	assert.Equal(t, "b.blend", tasks[3].FileName)
	assert.Equal(t, "client_1", tasks[3].Client)
}

func TestPartitionTasksNoFiles(t *testing.T) {
	tasks := partitionTasks("r", testMembers(2), nil)
	assert.Empty(t, tasks)
}
