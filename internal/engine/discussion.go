package engine

import (
	"sort"

	"corp_edu_backend/internal/model"
)

// BuildDiscussionTree 把扁平帖子组装成树：根帖子新的在前，回复按时间先后
// 父帖子不存在的行会被丢弃
func BuildDiscussionTree(posts []model.DiscussionPost) []model.DiscussionNode {
	sorted := make([]model.DiscussionPost, len(posts))
	copy(sorted, posts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	children := make(map[string][]model.DiscussionPost)
	var roots []model.DiscussionPost
	for _, p := range sorted {
		if p.ParentID == nil || *p.ParentID == "" {
			roots = append(roots, p)
			continue
		}
		children[*p.ParentID] = append(children[*p.ParentID], p)
	}

	var build func(p model.DiscussionPost) model.DiscussionNode
	build = func(p model.DiscussionPost) model.DiscussionNode {
		node := model.NodeFromPost(p)
		for _, c := range children[p.ID] {
			node.Replies = append(node.Replies, build(c))
		}
		return node
	}

	tree := make([]model.DiscussionNode, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		tree = append(tree, build(roots[i]))
	}
	return tree
}

// PrependRoot 新根帖子放在最前面
func PrependRoot(tree []model.DiscussionNode, post model.DiscussionNode) []model.DiscussionNode {
	out := make([]model.DiscussionNode, 0, len(tree)+1)
	out = append(out, post)
	return append(out, tree...)
}

// InsertReply 在任意深度找到 parentID 并追加回复，返回新树。
// 只重建从根到父节点路径上的切片，其余子树与原树共享；找不到父节点时返回原树和 false
func InsertReply(tree []model.DiscussionNode, parentID string, reply model.DiscussionNode) ([]model.DiscussionNode, bool) {
	for i := range tree {
		if tree[i].ID == parentID {
			out := cloneLevel(tree)
			replies := make([]model.DiscussionNode, 0, len(tree[i].Replies)+1)
			replies = append(replies, tree[i].Replies...)
			out[i].Replies = append(replies, reply)
			return out, true
		}
		if updated, ok := InsertReply(tree[i].Replies, parentID, reply); ok {
			out := cloneLevel(tree)
			out[i].Replies = updated
			return out, true
		}
	}
	return tree, false
}

func cloneLevel(tree []model.DiscussionNode) []model.DiscussionNode {
	out := make([]model.DiscussionNode, len(tree))
	copy(out, tree)
	return out
}

func FindPost(tree []model.DiscussionNode, id string) (*model.DiscussionNode, bool) {
	for i := range tree {
		if tree[i].ID == id {
			return &tree[i], true
		}
		if n, ok := FindPost(tree[i].Replies, id); ok {
			return n, true
		}
	}
	return nil, false
}

func CountPosts(tree []model.DiscussionNode) int {
	n := 0
	for _, node := range tree {
		n += 1 + CountPosts(node.Replies)
	}
	return n
}

// CollectText 深度优先收集帖子正文，用于话题分析
func CollectText(tree []model.DiscussionNode) []string {
	var out []string
	for _, node := range tree {
		out = append(out, node.Text)
		out = append(out, CollectText(node.Replies)...)
	}
	return out
}
